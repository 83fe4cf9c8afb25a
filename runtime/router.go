// Package runtime handles event propagation and background upkeep.
// It orchestrates delivery without containing business logic or domain rules.
package runtime

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/metrics"
)

type connSet map[contract.ConnectionID]struct{}

// Router is the fan-out hub. It maps rooms and users to live connections
// and delivers events to exactly those sets. It holds no durable state:
// membership lives in the room store, the router only tracks who is
// connected and subscribed right now.
//
// Router is passed by handle to every component that publishes; nothing in
// the relay reaches for a global broadcaster.
type Router struct {
	mu        sync.RWMutex
	log       *slog.Logger
	sinks     map[contract.ConnectionID]contract.EventSink
	connUser  map[contract.ConnectionID]domain.UserID
	users     map[domain.UserID]connSet
	rooms     map[domain.RoomID]connSet
	connRooms map[contract.ConnectionID]map[domain.RoomID]struct{}
}

func NewRouter(log *slog.Logger) *Router {
	return &Router{
		log:       log,
		sinks:     make(map[contract.ConnectionID]contract.EventSink),
		connUser:  make(map[contract.ConnectionID]domain.UserID),
		users:     make(map[domain.UserID]connSet),
		rooms:     make(map[domain.RoomID]connSet),
		connRooms: make(map[contract.ConnectionID]map[domain.RoomID]struct{}),
	}
}

// Register binds a connection to its user identity and opens the user's
// personal channel. The same user may hold several connections.
func (r *Router) Register(connID contract.ConnectionID, userID domain.UserID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[connID] = sink
	r.connUser[connID] = userID
	if _, ok := r.users[userID]; !ok {
		r.users[userID] = make(connSet)
	}
	r.users[userID][connID] = struct{}{}
	r.connRooms[connID] = make(map[domain.RoomID]struct{})
	metrics.LiveConnections.Inc()
}

// Deregister removes the connection from every room set and from its
// user's personal channel. Empty sets are removed to prevent the maps from
// growing over time.
func (r *Router) Deregister(connID contract.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sinks[connID]; !ok {
		return
	}
	delete(r.sinks, connID)

	userID := r.connUser[connID]
	delete(r.connUser, connID)
	if conns, ok := r.users[userID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.users, userID)
		}
	}

	for roomID := range r.connRooms[connID] {
		r.removeFromRoomLocked(connID, roomID)
	}
	delete(r.connRooms, connID)
	metrics.LiveConnections.Dec()
}

// Subscribe adds the connection to the room's fan-out set. Idempotent.
func (r *Router) Subscribe(connID contract.ConnectionID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sinks[connID]; !ok {
		return
	}
	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(connSet)
	}
	r.rooms[roomID][connID] = struct{}{}
	r.connRooms[connID][roomID] = struct{}{}
}

// Unsubscribe removes the connection from the room's fan-out set. Idempotent.
func (r *Router) Unsubscribe(connID contract.ConnectionID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeFromRoomLocked(connID, roomID)
	if joined, ok := r.connRooms[connID]; ok {
		delete(joined, roomID)
	}
}

// IsSubscribed reports whether the connection currently holds a live
// subscription to the room. The subscription is the authorization artifact
// for publishing: a connection cannot send to a room it never joined.
func (r *Router) IsSubscribed(connID contract.ConnectionID, roomID domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.connRooms[connID][roomID]
	return ok
}

// Publish delivers the event to every connection subscribed to the room at
// the moment of publish. Connections joining afterwards do not receive it;
// they replay history from the store instead.
func (r *Router) Publish(ctx context.Context, roomID domain.RoomID, e event.DomainEvent) {
	r.mu.RLock()
	sinks := r.snapshotLocked(r.rooms[roomID])
	r.mu.RUnlock()

	r.deliver(ctx, sinks, e)
}

// PublishToUser delivers the event to every connection of the user,
// regardless of room subscriptions. Used for invitation notices.
func (r *Router) PublishToUser(ctx context.Context, userID domain.UserID, e event.DomainEvent) {
	r.mu.RLock()
	sinks := r.snapshotLocked(r.users[userID])
	r.mu.RUnlock()

	r.deliver(ctx, sinks, e)
}

// Broadcast delivers the event to every connected session.
func (r *Router) Broadcast(ctx context.Context, e event.DomainEvent) {
	r.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(r.sinks))
	for _, sink := range r.sinks {
		sinks = append(sinks, sink)
	}
	r.mu.RUnlock()

	r.deliver(ctx, sinks, e)
}

// deliver consumes outside the lock so a slow sink cannot stall the
// registry. Sinks buffer internally; a full buffer is their problem to
// report, not ours to wait on.
func (r *Router) deliver(ctx context.Context, sinks []contract.EventSink, e event.DomainEvent) {
	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Debug("Sink refused event", "event", e.EventName(), "error", err)
			continue
		}
		metrics.EventsDelivered.WithLabelValues(e.EventName()).Inc()
	}
}

func (r *Router) snapshotLocked(conns connSet) []contract.EventSink {
	if len(conns) == 0 {
		return nil
	}
	sinks := make([]contract.EventSink, 0, len(conns))
	for connID := range conns {
		if sink, ok := r.sinks[connID]; ok {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

func (r *Router) removeFromRoomLocked(connID contract.ConnectionID, roomID domain.RoomID) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}
