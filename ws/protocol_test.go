package ws

import (
	"encoding/json"
	"testing"
	"time"

	"chat-relay/domain/event"
	"chat-relay/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestEncodeEvent_MessageBroadcast(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	env, err := encodeEvent(event.MessageBroadcast{
		ID:         uuid.New(),
		RoomID:     "room-1",
		SenderID:   "alice-id",
		SenderName: "Alice",
		Body:       "hi",
		At:         at,
	})

	req.NoError(err)
	req.Equal("chat_message", env.Type)

	var payload MessagePayload
	req.NoError(json.Unmarshal(env.Payload, &payload))
	req.Equal("room-1", payload.RoomID)
	req.Equal("Alice", payload.SenderName)
	req.Equal("hi", payload.Body)
	req.True(payload.Timestamp.Equal(at))
}

func TestEncodeEvent_Covers_Every_Event(t *testing.T) {
	req := require.New(t)

	events := []event.DomainEvent{
		event.MessageBroadcast{RoomID: "room-1"},
		event.RoomCreated{RoomID: "room-1", Name: "general"},
		event.RoomDeleted{RoomID: "room-1"},
		event.InvitationReceived{RoomID: "room-1", InviterName: "alice"},
		event.InvitationAccepted{RoomID: "room-1", AccepterName: "bob"},
		event.InvitationRejected{RoomID: "room-1", RejecterName: "bob"},
	}

	for _, e := range events {
		env, err := encodeEvent(e)
		req.NoError(err)
		req.Equal(e.EventName(), env.Type)
		req.NotEmpty(env.Payload)
	}
}

func TestErrorEnvelope_Codes(t *testing.T) {
	req := require.New(t)

	cases := map[error]string{
		errors.ErrRoomNotFound:     "not_found",
		errors.ErrAccessDenied:     "access_denied",
		errors.ErrNotSubscribed:    "invalid",
		errors.ErrEmptyMessage:     "invalid",
		errors.ErrMessageTooLong:   "invalid",
		errors.ErrAlreadyInvited:   "conflict",
		errors.ErrStoreUnavailable: "store_unavailable",
	}

	for err, code := range cases {
		env := errorEnvelope(err)
		req.Equal("error", env.Type)

		var payload ErrorPayload
		req.NoError(json.Unmarshal(env.Payload, &payload))
		req.Equal(code, payload.Code, err.Error())
	}
}
