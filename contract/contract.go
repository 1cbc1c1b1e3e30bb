//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry is the single source of truth for who is online.
type IRegistry interface {
	Register(connectionID, displayName string) (domain.Session, error)
	Lookup(connectionID string) (domain.Session, error)
	Remove(connectionID string) (domain.Session, error)
	Snapshot() []domain.Session
}

// IHub fans events out to every current subscriber of the shared channel.
type IHub interface {
	Subscribe(connectionID string, sink domain.EventSink)
	Unsubscribe(connectionID string)
	Broadcast(ctx context.Context, e domain.ChatEvent)
}
