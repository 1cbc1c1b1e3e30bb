// Package projection builds local views from observed events.
// It does not emit events or interact with transports directly.
package projection

import (
	"chat-relay/domain"
	"context"
	"sync"
)

// Timeline keeps the most recent broadcast events, presence included, as a
// bounded tail for diagnostics. It is wired as a permanent hub observer.
type Timeline struct {
	mu     sync.RWMutex
	limit  int
	events []domain.ChatEvent
}

func NewTimeline(limit int) *Timeline {
	return &Timeline{limit: limit}
}

func (t *Timeline) Consume(_ context.Context, e domain.ChatEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
	if t.limit > 0 && len(t.events) > t.limit {
		t.events = t.events[len(t.events)-t.limit:]
	}
	return nil
}

// Recent returns a copy of the tail in broadcast order.
func (t *Timeline) Recent() []domain.ChatEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.ChatEvent, len(t.events))
	copy(out, t.events)
	return out
}
