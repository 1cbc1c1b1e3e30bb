package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"log/slog"
	"strings"
)

// Coordinator reacts to transport signals and drives a connection through
// its lifecycle: CONNECTING (open, unidentified) -> IDENTIFIED (present in
// the registry, subscribed to the hub) -> CLOSED. Registry mutations are
// done synchronously so an identify can be rejected on the spot; hub
// subscription and presence announcements go through the command pipeline
// so they share one total order with the chat traffic.
type Coordinator struct {
	log      *slog.Logger
	registry contract.IRegistry
	commands chan<- domain.Command
}

func NewCoordinator(log *slog.Logger, registry contract.IRegistry, commands chan<- domain.Command) *Coordinator {
	return &Coordinator{log: log, registry: registry, commands: commands}
}

// OnConnect is the transport handshake notification. Nothing is registered
// until the connection identifies itself.
func (c *Coordinator) OnConnect(connectionID string) {
	c.log.Debug("connection open", "connection_id", connectionID)
}

// OnIdentify handles the first identify signal of a connection. On success
// the connection is subscribed and its JOIN announced; on
// ErrBlankDisplayName or ErrDuplicateSession the caller is expected to
// close the connection, since a connection cannot proceed without a valid
// unique identity. Every event carries a non-empty sender, so a blank
// display name is rejected before anything is registered.
func (c *Coordinator) OnIdentify(connectionID, displayName string, sink domain.EventSink) error {
	if strings.TrimSpace(displayName) == "" {
		c.log.Warn("identify rejected", "connection_id", connectionID,
			"error", errors.ErrBlankDisplayName)
		return errors.ErrBlankDisplayName
	}
	session, err := c.registry.Register(connectionID, displayName)
	if err != nil {
		c.log.Warn("identify rejected", "connection_id", connectionID, "error", err)
		return err
	}
	c.log.Info("user identified",
		"connection_id", connectionID,
		"display_name", session.DisplayName)
	c.dispatchBlocking(domain.SubscribeCommand{
		ConnID:      connectionID,
		DisplayName: session.DisplayName,
		Sink:        sink,
	})
	return nil
}

// OnMessage accepts a chat message from an identified connection. The
// content is stamped, persisted, and broadcast downstream; senders that
// never identified are rejected. Under sustained overload the message is
// shed and ErrRelayBackpressure tells the sender it was not accepted.
func (c *Coordinator) OnMessage(connectionID, content string) error {
	session, err := c.registry.Lookup(connectionID)
	if err != nil {
		return err
	}
	return c.dispatch(domain.PostMessageCommand{
		ConnID:  connectionID,
		Sender:  session.DisplayName,
		Content: content,
	})
}

// OnDisconnect tears a connection down. It is idempotent: the second call
// for the same connection finds no session and does nothing, so exactly
// one LEAVE is ever announced. A connection that never identified has
// nothing to announce.
func (c *Coordinator) OnDisconnect(connectionID string) {
	session, err := c.registry.Remove(connectionID)
	if err != nil {
		c.log.Debug("disconnect for unknown connection", "connection_id", connectionID)
		return
	}
	c.log.Info("user disconnected",
		"connection_id", connectionID,
		"display_name", session.DisplayName)
	c.dispatchBlocking(domain.UnsubscribeCommand{
		ConnID:      connectionID,
		DisplayName: session.DisplayName,
	})
}

// dispatch enqueues chat traffic without blocking the transport goroutine.
// Under sustained overload messages are shed here rather than queued
// without bound, and the caller is told so.
func (c *Coordinator) dispatch(cmd domain.Command) error {
	select {
	case c.commands <- cmd:
		return nil
	default:
		c.log.Warn("command channel full, dropping command",
			"connection_id", cmd.ConnectionID())
		return errors.ErrRelayBackpressure
	}
}

// dispatchBlocking is used for lifecycle commands, which must not be shed:
// a lost subscribe strands a registered session and a lost unsubscribe
// leaks a hub handle.
func (c *Coordinator) dispatchBlocking(cmd domain.Command) {
	c.commands <- cmd
}
