package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/services"

	"github.com/gorilla/websocket"
)

// Gateway owns the websocket endpoint. It validates the bearer token once
// at connect time (fail closed: no token, no session), binds the identity
// to the connection, registers the session on its personal channel, and
// runs the read loop dispatching inbound events to the chat service.
type Gateway struct {
	log        *slog.Logger
	tokens     *auth.TokenIssuer
	router     contract.IRouter
	chat       services.IChatService
	bufferSize int
	upgrader   websocket.Upgrader
}

func NewGateway(log *slog.Logger, tokens *auth.TokenIssuer, router contract.IRouter, chat services.IChatService, bufferSize int) *Gateway {
	return &Gateway{
		log:        log,
		tokens:     tokens,
		router:     router,
		chat:       chat,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection after authenticating the caller.
// The token travels in the Authorization header or, for browser websocket
// clients that cannot set headers, in the "token" query parameter.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, err := g.authenticate(r)
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(g.log, conn, domain.UserID(claims.UserID), claims.Username, g.bufferSize)
	session.Start()

	g.router.Register(session.ID, session.UserID, session)
	defer func() {
		// Disconnect drops every room subscription and the personal
		// channel; no durable state changes.
		g.router.Deregister(session.ID)
		session.Close(websocket.CloseNormalClosure, "bye")
	}()

	g.log.Info("Session connected", "connection_id", session.ID, "user_id", session.UserID)
	g.readLoop(r.Context(), session, conn)
	g.log.Info("Session disconnected", "connection_id", session.ID, "user_id", session.UserID)
}

func (g *Gateway) readLoop(ctx context.Context, session *Session, conn *websocket.Conn) {
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		g.dispatch(ctx, session, env)
	}
}

func (g *Gateway) authenticate(r *http.Request) (*auth.CustomClaims, error) {
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); token == "" && header != "" {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	return g.tokens.Validate(token)
}

// dispatch handles one inbound event. Every failure is reported to the
// caller's own session only; no other session is informed.
func (g *Gateway) dispatch(ctx context.Context, session *Session, env Envelope) {
	switch env.Type {
	case "join_room":
		var payload JoinRoomPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			_ = session.send(errorEnvelope(err))
			return
		}
		roomID := domain.RoomID(payload.RoomID)
		history, err := g.chat.JoinRoom(ctx, session.ID, session.UserID, roomID)
		if err != nil {
			_ = session.send(errorEnvelope(err))
			return
		}
		historyEnv, err := historyEnvelope(roomID, history)
		if err != nil {
			_ = session.send(errorEnvelope(err))
			return
		}
		_ = session.send(historyEnv)

	case "chat_message":
		var payload ChatMessagePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			_ = session.send(errorEnvelope(err))
			return
		}
		err := g.chat.SendMessage(ctx, session.ID, session.UserID, session.Username,
			domain.RoomID(payload.RoomID), payload.Body)
		if err != nil {
			_ = session.send(errorEnvelope(err))
		}

	default:
		g.log.Debug("Unknown inbound event", "type", env.Type)
	}
}
