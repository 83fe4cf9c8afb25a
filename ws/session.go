package ws

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Session wraps one websocket and coordinates outbound writes via a
// buffered channel. The (user id, display name) identity is bound once at
// connect time and never changes for the connection's lifetime.
//
// Session is the fan-out router's EventSink for this connection: Consume
// never blocks the publisher. If the client is slow and the buffer fills,
// the connection is closed to keep backpressure bounded; the client may
// reconnect and replay history.
type Session struct {
	ID       contract.ConnectionID
	UserID   domain.UserID
	Username string

	log  *slog.Logger
	ws   *websocket.Conn
	out  chan Envelope
	once sync.Once
	done chan struct{}
}

func NewSession(log *slog.Logger, conn *websocket.Conn, userID domain.UserID, username string, bufferSize int) *Session {
	return &Session{
		ID:       contract.ConnectionID(uuid.NewString()),
		UserID:   userID,
		Username: username,
		log:      log,
		ws:       conn,
		out:      make(chan Envelope, bufferSize),
		done:     make(chan struct{}),
	}
}

// Consume implements contract.EventSink. It encodes the event and enqueues
// it without blocking; a full buffer drops the connection.
func (s *Session) Consume(ctx context.Context, e event.DomainEvent) error {
	env, err := encodeEvent(e)
	if err != nil {
		return err
	}
	return s.send(env)
}

// send enqueues an envelope for the write loop.
func (s *Session) send(env Envelope) error {
	select {
	case <-s.done:
		return stderrors.New("session closed")
	case s.out <- env:
		return nil
	default:
		metrics.EventsDropped.Inc()
		s.Close(websocket.CloseGoingAway, "send buffer full")
		return stderrors.New("send buffer exceeded")
	}
}

// Start launches the write loop. Must be called exactly once per session.
func (s *Session) Start() {
	go s.writeLoop()
}

// Close terminates the connection and stops the write loop.
func (s *Session) Close(code int, reason string) {
	s.once.Do(func() {
		close(s.done)
		message := websocket.FormatCloseMessage(code, reason)
		_ = s.ws.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
		_ = s.ws.Close()
	})
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case env := <-s.out:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteJSON(env); err != nil {
				s.log.Debug("Write failed, closing session",
					"connection_id", s.ID, "error", err)
				s.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}
