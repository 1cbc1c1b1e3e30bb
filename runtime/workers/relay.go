package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/repositories"
	"context"
	"log/slog"
)

var _ contract.Worker = (*RelayWorker)(nil)

// RelayWorker is the sequencing stage: it drains the sanitized command
// channel and, for each command, performs subscribe/append/broadcast in
// order. Exactly one instance runs, which is what makes the transcript's
// append order and every subscriber's delivery order the same total order.
//
// A JOIN is broadcast immediately after the subscription it announces, so
// a new subscriber always observes its own JOIN first; a connection is
// unsubscribed before its LEAVE goes out, so it never observes its own
// departure.
type RelayWorker struct {
	log        *slog.Logger
	repository repositories.IMessageRepository
	hub        contract.IHub
	monitor    *observability.Manager
	commands   chan domain.Command
}

func NewRelayWorker(log *slog.Logger, repository repositories.IMessageRepository,
	hub contract.IHub, monitor *observability.Manager, commands chan domain.Command) *RelayWorker {
	return &RelayWorker{
		log:        log,
		repository: repository,
		hub:        hub,
		monitor:    monitor,
		commands:   commands,
	}
}

func (w *RelayWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.handle(ctx, cmd)
		}
	}
}

func (w *RelayWorker) handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.SubscribeCommand:
		w.hub.Subscribe(c.ConnID, c.Sink)
		w.hub.Broadcast(ctx, domain.NewJoinEvent(c.DisplayName))
	case domain.PostMessageCommand:
		w.hub.Broadcast(ctx, w.append(c))
	case domain.UnsubscribeCommand:
		w.hub.Unsubscribe(c.ConnID)
		w.hub.Broadcast(ctx, domain.NewLeaveEvent(c.DisplayName))
	default:
		w.log.Warn("unknown command", "connection_id", cmd.ConnectionID())
	}
}

// append persists the message and returns the stamped event. A storage
// failure degrades durability, not visibility: the error is surfaced to
// the operator and the event is broadcast anyway. The repository stamps
// before writing, so both outcomes carry the same monotonic clock.
func (w *RelayWorker) append(cmd domain.PostMessageCommand) domain.ChatEvent {
	stored, err := w.repository.Append(cmd.Sender, cmd.Content)
	if err != nil {
		w.log.Error("transcript append failed",
			"sender", cmd.Sender,
			"lang", cmd.Lang,
			"error", err)
		w.monitor.AddAppendFailure()
	} else {
		w.monitor.AddPersisted()
	}
	return domain.ChatEvent{
		ID:        stored.ID,
		Kind:      domain.KindChat,
		Sender:    stored.Sender,
		Content:   stored.Content,
		Timestamp: stored.At,
	}
}
