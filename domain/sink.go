//go:generate go run go.uber.org/mock/mockgen -source=sink.go -destination=../mocks/mock_sink.go -package=mocks
package domain

import "context"

// EventSink consumes broadcast events. Implementations must not block on
// slow consumers: a sink that cannot take the event returns an error and
// the hub decides what to do with it.
type EventSink interface {
	Consume(ctx context.Context, e ChatEvent) error
}
