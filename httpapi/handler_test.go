package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-relay/auth"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/ws"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	messageRepository := repositories.NewMessageRepository(db, log)
	roomRepository := repositories.NewRoomRepository(db, log)
	userRepository := repositories.NewUserRepository(db)

	moderator, err := moderation.NewModerator([]string{"heck"}, '*')
	req.NoError(err)

	router := runtime.NewRouter(log)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(log, router, roomRepository, messageRepository,
		userRepository, moderator, 50, 2000)
	roomService := services.NewRoomService(log, router, roomRepository, messageRepository, userRepository)
	invitationService := services.NewInvitationService(log, router, roomRepository, userRepository)

	gateway := ws.NewGateway(log, tokens, router, chatService, 32)
	handler := NewHandler(log, tokens, authService, roomService, invitationService, chatService, gateway)

	server := httptest.NewServer(handler.Routes())
	t.Cleanup(server.Close)

	return &testEnv{t: t, server: server}
}

func (e *testEnv) request(method, path, token string, body any) (int, map[string]any) {
	e.t.Helper()
	req := require.New(e.t)

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		req.NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequest(method, e.server.URL+path, reader)
	req.NoError(err)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func (e *testEnv) requestList(method, path, token string) (int, []map[string]any) {
	e.t.Helper()
	req := require.New(e.t)

	httpReq, err := http.NewRequest(method, e.server.URL+path, nil)
	req.NoError(err)
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(httpReq)
	req.NoError(err)
	defer resp.Body.Close()

	var decoded []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func (e *testEnv) signup(email, username string) string {
	e.t.Helper()
	status, body := e.request(http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    email,
		"username": username,
		"password": "ComplexPass123!",
	})
	require.Equal(e.t, http.StatusCreated, status, body)
	return body["token"].(string)
}

func (e *testEnv) dial(token string) *websocket.Conn {
	e.t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// await reads frames until one of the wanted type arrives. Broadcasts such
// as room announcements may interleave with the awaited frame.
func await(t *testing.T, conn *websocket.Conn, wantType string) ws.Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for i := 0; i < 20; i++ {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var env ws.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == wantType {
			return env
		}
	}
	t.Fatalf("no %q frame received", wantType)
	return ws.Envelope{}
}

func sendEnvelope(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(ws.Envelope{Type: eventType, Payload: raw}))
}

func Test_Signup_Login_And_Me(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	token := env.signup("alice@example.com", "alice")

	status, body := env.request(http.MethodGet, "/auth/me", token, nil)
	req.Equal(http.StatusOK, status)
	req.Equal("alice", body["username"])

	// A second signup with the same email conflicts
	status, _ = env.request(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "alice@example.com", "username": "alice2", "password": "ComplexPass123!",
	})
	req.Equal(http.StatusConflict, status)

	status, body = env.request(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "ComplexPass123!",
	})
	req.Equal(http.StatusOK, status)
	req.NotEmpty(body["token"])

	status, _ = env.request(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "WrongPass123!",
	})
	req.Equal(http.StatusUnauthorized, status)

	// Protected surface without a token
	status, _ = env.request(http.MethodGet, "/rooms", "", nil)
	req.Equal(http.StatusUnauthorized, status)
}

func Test_Public_Room_Chat_End_To_End(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	aliceToken := env.signup("alice@example.com", "alice")
	bobToken := env.signup("bob@example.com", "bob")

	status, room := env.request(http.MethodPost, "/rooms", aliceToken, map[string]any{
		"name": "general",
	})
	req.Equal(http.StatusCreated, status)
	roomID := room["id"].(string)

	alice := env.dial(aliceToken)
	bob := env.dial(bobToken)

	// Both join: history is empty at this point
	sendEnvelope(t, alice, "join_room", ws.JoinRoomPayload{RoomID: roomID})
	history := await(t, alice, "room_history")
	var historyPayload ws.HistoryPayload
	req.NoError(json.Unmarshal(history.Payload, &historyPayload))
	req.Empty(historyPayload.Messages)

	sendEnvelope(t, bob, "join_room", ws.JoinRoomPayload{RoomID: roomID})
	await(t, bob, "room_history")

	// Alice says hi: both subscribers receive it, Alice included
	sendEnvelope(t, alice, "chat_message", ws.ChatMessagePayload{RoomID: roomID, Body: "hi"})
	var fromAlice ws.MessagePayload
	req.NoError(json.Unmarshal(await(t, bob, "chat_message").Payload, &fromAlice))
	req.Equal("hi", fromAlice.Body)
	req.Equal("alice", fromAlice.SenderName)
	req.NoError(json.Unmarshal(await(t, alice, "chat_message").Payload, &fromAlice))
	req.Equal("hi", fromAlice.Body)

	// Bob answers
	sendEnvelope(t, bob, "chat_message", ws.ChatMessagePayload{RoomID: roomID, Body: "yo"})
	var fromBob ws.MessagePayload
	req.NoError(json.Unmarshal(await(t, alice, "chat_message").Payload, &fromBob))
	req.Equal("yo", fromBob.Body)
	await(t, bob, "chat_message")

	// A latecomer replays the full exchange in order
	carolToken := env.signup("carol@example.com", "carol")
	carol := env.dial(carolToken)
	sendEnvelope(t, carol, "join_room", ws.JoinRoomPayload{RoomID: roomID})
	req.NoError(json.Unmarshal(await(t, carol, "room_history").Payload, &historyPayload))
	req.Len(historyPayload.Messages, 2)
	req.Equal("hi", historyPayload.Messages[0].Body)
	req.Equal("yo", historyPayload.Messages[1].Body)

	// Bob never marked the room read: both messages count as unread
	status, rooms := env.requestList(http.MethodGet, "/rooms", bobToken)
	req.Equal(http.StatusOK, status)
	req.Len(rooms, 1)
	req.Equal(float64(2), rooms[0]["unread"])

	status, _ = env.request(http.MethodPost, fmt.Sprintf("/rooms/%s/read", roomID), bobToken, nil)
	req.Equal(http.StatusOK, status)

	_, rooms = env.requestList(http.MethodGet, "/rooms", bobToken)
	req.Nil(rooms[0]["unread"])
}

func Test_Private_Room_Invitation_Flow(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	aliceToken := env.signup("alice@example.com", "alice")
	bobToken := env.signup("bob@example.com", "bob")

	status, room := env.request(http.MethodPost, "/rooms", aliceToken, map[string]any{
		"name": "secret", "private": true,
	})
	req.Equal(http.StatusCreated, status)
	roomID := room["id"].(string)

	// A private room is invisible to non-members
	status, rooms := env.requestList(http.MethodGet, "/rooms", bobToken)
	req.Equal(http.StatusOK, status)
	req.Empty(rooms)

	// And a direct join is denied
	bob := env.dial(bobToken)
	sendEnvelope(t, bob, "join_room", ws.JoinRoomPayload{RoomID: roomID})
	var wsErr ws.ErrorPayload
	req.NoError(json.Unmarshal(await(t, bob, "error").Payload, &wsErr))
	req.Equal("access_denied", wsErr.Code)

	// Alice invites Bob, who is notified on his personal channel
	status, _ = env.request(http.MethodPost, fmt.Sprintf("/rooms/%s/invite", roomID), aliceToken,
		map[string]string{"username": "bob"})
	req.Equal(http.StatusOK, status)

	var invitation ws.InvitationReceivedPayload
	req.NoError(json.Unmarshal(await(t, bob, "invitation_received").Payload, &invitation))
	req.Equal("secret", invitation.RoomName)
	req.Equal("alice", invitation.InviterName)

	// Inviting twice is a conflict
	status, _ = env.request(http.MethodPost, fmt.Sprintf("/rooms/%s/invite", roomID), aliceToken,
		map[string]string{"username": "bob"})
	req.Equal(http.StatusConflict, status)

	// Bob sees and accepts the invitation, then the join succeeds
	status, pending := env.requestList(http.MethodGet, "/invitations", bobToken)
	req.Equal(http.StatusOK, status)
	req.Len(pending, 1)

	status, accepted := env.request(http.MethodPost, fmt.Sprintf("/invitations/%s/accept", roomID), bobToken, nil)
	req.Equal(http.StatusOK, status)
	req.Equal("secret", accepted["name"])

	sendEnvelope(t, bob, "join_room", ws.JoinRoomPayload{RoomID: roomID})
	await(t, bob, "room_history")
}

func Test_Room_Trash_Lifecycle(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	aliceToken := env.signup("alice@example.com", "alice")
	bobToken := env.signup("bob@example.com", "bob")

	status, room := env.request(http.MethodPost, "/rooms", aliceToken, map[string]any{"name": "general"})
	req.Equal(http.StatusCreated, status)
	roomID := room["id"].(string)

	// Only the owner may trash it
	status, _ = env.request(http.MethodDelete, "/rooms/"+roomID, bobToken, nil)
	req.Equal(http.StatusForbidden, status)

	status, _ = env.request(http.MethodDelete, "/rooms/"+roomID, aliceToken, nil)
	req.Equal(http.StatusOK, status)

	// Gone from the visible list, present in the owner's trash
	_, rooms := env.requestList(http.MethodGet, "/rooms", aliceToken)
	req.Empty(rooms)
	_, trash := env.requestList(http.MethodGet, "/rooms/trash", aliceToken)
	req.Len(trash, 1)
	req.NotEmpty(trash[0]["deletedAt"])

	// Restore brings it back with history intact
	status, restored := env.request(http.MethodPost, fmt.Sprintf("/rooms/%s/restore", roomID), aliceToken, nil)
	req.Equal(http.StatusOK, status)
	req.Equal("general", restored["name"])

	_, rooms = env.requestList(http.MethodGet, "/rooms", aliceToken)
	req.Len(rooms, 1)

	// Permanent delete only works from the trash
	status, _ = env.request(http.MethodDelete, fmt.Sprintf("/rooms/%s/permanent", roomID), aliceToken, nil)
	req.Equal(http.StatusConflict, status)

	_, _ = env.request(http.MethodDelete, "/rooms/"+roomID, aliceToken, nil)
	status, _ = env.request(http.MethodDelete, fmt.Sprintf("/rooms/%s/permanent", roomID), aliceToken, nil)
	req.Equal(http.StatusOK, status)

	status, _ = env.request(http.MethodGet, "/rooms/trash", aliceToken, nil)
	req.Equal(http.StatusOK, status)
	_, trash = env.requestList(http.MethodGet, "/rooms/trash", aliceToken)
	req.Empty(trash)
}

func Test_Websocket_Requires_Token(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}
