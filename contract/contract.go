//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
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

// ConnectionID identifies one live session. A user connected twice holds
// two distinct connection ids.
type ConnectionID string

// EventSink is the delivery end of one connection. Consume must not block
// the publisher: implementations buffer and apply their own overflow policy.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRouter maintains room -> connections and user -> connections mappings and
// delivers events to exactly those sets. It never replays: history is served
// by the message store on join.
type IRouter interface {
	Register(connID ConnectionID, userID domain.UserID, sink EventSink)
	Deregister(connID ConnectionID)
	Subscribe(connID ConnectionID, roomID domain.RoomID)
	Unsubscribe(connID ConnectionID, roomID domain.RoomID)
	IsSubscribed(connID ConnectionID, roomID domain.RoomID) bool
	Publish(ctx context.Context, roomID domain.RoomID, e event.DomainEvent)
	PublishToUser(ctx context.Context, userID domain.UserID, e event.DomainEvent)
	Broadcast(ctx context.Context, e event.DomainEvent)
}
