package runtime

import (
	"chat-relay/domain"
	"chat-relay/observability"
	"context"
	"log/slog"
	"sync"
)

// Hub owns the subscriber set for the shared channel and fans each event
// out to every current subscriber plus the permanent observers (timeline
// projection, search index). It never owns connection lifetimes: sinks are
// delivery handles, nothing more.
//
// A failing subscriber is isolated: its error is logged, it is handed to
// the evict callback (the coordinator's disconnect path), and delivery to
// the remaining subscribers continues. Sinks are required to be
// non-blocking, so one slow consumer cannot delay another.
type Hub struct {
	mu          sync.RWMutex
	log         *slog.Logger
	monitor     *observability.Manager
	subscribers map[string]domain.EventSink
	observers   []domain.EventSink
	evict       func(connectionID string)
}

func NewHub(log *slog.Logger, monitor *observability.Manager, observers ...domain.EventSink) *Hub {
	return &Hub{
		log:         log,
		monitor:     monitor,
		subscribers: make(map[string]domain.EventSink),
		observers:   observers,
	}
}

// SetEvictFunc wires the disconnect path invoked when a delivery fails.
// Set once at composition time, before any broadcast.
func (h *Hub) SetEvictFunc(fn func(connectionID string)) {
	h.evict = fn
}

// Subscribe registers the delivery handle for a connection. Re-subscribing
// replaces the prior handle without error (reconnection-tolerant).
func (h *Hub) Subscribe(connectionID string, sink domain.EventSink) {
	h.mu.Lock()
	h.subscribers[connectionID] = sink
	count := len(h.subscribers)
	h.mu.Unlock()
	h.monitor.SetConnectedClients(count)
}

// Unsubscribe is idempotent; removing an unknown connection is a no-op.
func (h *Hub) Unsubscribe(connectionID string) {
	h.mu.Lock()
	delete(h.subscribers, connectionID)
	count := len(h.subscribers)
	h.mu.Unlock()
	h.monitor.SetConnectedClients(count)
}

type delivery struct {
	connectionID string
	sink         domain.EventSink
}

// Broadcast delivers the event to a snapshot of the current subscribers.
// Fan-out order across subscribers is unspecified; the order of successive
// Broadcast calls is what every subscriber observes, so callers must
// serialize broadcasts (the relay worker does).
func (h *Hub) Broadcast(ctx context.Context, e domain.ChatEvent) {
	h.mu.RLock()
	targets := make([]delivery, 0, len(h.subscribers))
	for id, sink := range h.subscribers {
		targets = append(targets, delivery{connectionID: id, sink: sink})
	}
	observers := h.observers
	h.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Consume(ctx, e); err != nil {
			h.log.Error("observer rejected event", "kind", e.Kind, "error", err)
		}
	}

	for _, target := range targets {
		if err := target.sink.Consume(ctx, e); err != nil {
			h.log.Warn("delivery failed, evicting subscriber",
				"connection_id", target.connectionID,
				"kind", e.Kind,
				"error", err)
			h.monitor.AddDroppedDelivery()
			if h.evict != nil {
				// The evict path dispatches back into the pipeline; run it
				// off the broadcasting goroutine to keep fan-out moving.
				go h.evict(target.connectionID)
			}
		}
	}
	h.monitor.AddBroadcast()
}
