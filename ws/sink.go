// Package ws is the WebSocket transport: it upgrades connections, turns
// inbound frames into coordinator signals, and pushes broadcast events
// back out through a bounded per-connection buffer.
package ws

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"sync"
)

// Sink hands broadcast events to the connection's write pump. The buffer
// is bounded: a client that cannot keep up gets a backpressure error,
// which the hub treats as a delivery failure and turns into an eviction.
//
// The first backpressure failure also closes the sink, so the write pump
// observes the eviction and tears the connection down even if the client
// never sends another frame.
type Sink struct {
	Events    chan domain.ChatEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		Events: make(chan domain.ChatEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Close marks the sink terminal. Idempotent; Done unblocks afterwards.
func (s *Sink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Done is closed once the sink is no longer usable for delivery.
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

func (s *Sink) Consume(ctx context.Context, e domain.ChatEvent) error {
	select {
	case <-s.done:
		return errors.ErrDeliveryBackpressure
	default:
	}
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.Close()
		return errors.ErrDeliveryBackpressure
	}
}
