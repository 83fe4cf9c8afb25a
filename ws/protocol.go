package ws

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// Envelope is the wire frame for both directions: a type tag and a
// type-specific JSON payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound payloads.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type ChatMessagePayload struct {
	RoomID string `json:"roomId"`
	Body   string `json:"body"`
}

// Outbound payloads.
type MessagePayload struct {
	RoomID     string    `json:"roomId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

type HistoryPayload struct {
	RoomID   string           `json:"roomId"`
	Messages []MessagePayload `json:"messages"`
}

type RoomPayload struct {
	RoomID  string `json:"roomId"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
	Private bool   `json:"private"`
}

type RoomDeletedPayload struct {
	RoomID string `json:"roomId"`
}

type InvitationReceivedPayload struct {
	RoomID      string `json:"roomId"`
	RoomName    string `json:"roomName"`
	InviterID   string `json:"inviterId"`
	InviterName string `json:"inviterName"`
}

type InvitationAcceptedPayload struct {
	RoomID       string `json:"roomId"`
	RoomName     string `json:"roomName"`
	AccepterName string `json:"accepterName"`
}

type InvitationRejectedPayload struct {
	RoomID       string `json:"roomId"`
	RejecterName string `json:"rejecterName"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newEnvelope(eventType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Payload: raw}, nil
}

// encodeEvent maps a domain event onto its wire envelope.
func encodeEvent(e event.DomainEvent) (Envelope, error) {
	switch evt := e.(type) {
	case event.MessageBroadcast:
		return newEnvelope(evt.EventName(), MessagePayload{
			RoomID:     string(evt.RoomID),
			SenderID:   string(evt.SenderID),
			SenderName: evt.SenderName,
			Body:       evt.Body,
			Timestamp:  evt.At,
		})
	case event.RoomCreated:
		return newEnvelope(evt.EventName(), RoomPayload{
			RoomID:  string(evt.RoomID),
			Name:    evt.Name,
			OwnerID: string(evt.OwnerID),
			Private: evt.Private,
		})
	case event.RoomDeleted:
		return newEnvelope(evt.EventName(), RoomDeletedPayload{RoomID: string(evt.RoomID)})
	case event.InvitationReceived:
		return newEnvelope(evt.EventName(), InvitationReceivedPayload{
			RoomID:      string(evt.RoomID),
			RoomName:    evt.RoomName,
			InviterID:   string(evt.InviterID),
			InviterName: evt.InviterName,
		})
	case event.InvitationAccepted:
		return newEnvelope(evt.EventName(), InvitationAcceptedPayload{
			RoomID:       string(evt.RoomID),
			RoomName:     evt.RoomName,
			AccepterName: evt.AccepterName,
		})
	case event.InvitationRejected:
		return newEnvelope(evt.EventName(), InvitationRejectedPayload{
			RoomID:       string(evt.RoomID),
			RejecterName: evt.RejecterName,
		})
	default:
		return Envelope{}, fmt.Errorf("unmapped event type %T", e)
	}
}

func historyEnvelope(roomID domain.RoomID, messages []domain.Message) (Envelope, error) {
	payload := HistoryPayload{
		RoomID:   string(roomID),
		Messages: make([]MessagePayload, 0, len(messages)),
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, MessagePayload{
			RoomID:     string(m.RoomID),
			SenderID:   string(m.SenderID),
			SenderName: m.SenderName,
			Body:       m.Body,
			Timestamp:  m.At,
		})
	}
	return newEnvelope("room_history", payload)
}

func errorEnvelope(err error) Envelope {
	env, _ := newEnvelope("error", ErrorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	})
	return env
}

// errorCode maps service errors onto the wire taxonomy. Failures are
// always connection-local: only the caller's own session sees them.
func errorCode(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound), stderrors.Is(err, errors.ErrUserNotFound):
		return "not_found"
	case stderrors.Is(err, errors.ErrAccessDenied), stderrors.Is(err, errors.ErrNotOwner):
		return "access_denied"
	case stderrors.Is(err, errors.ErrNotSubscribed),
		stderrors.Is(err, errors.ErrEmptyMessage),
		stderrors.Is(err, errors.ErrMessageTooLong):
		return "invalid"
	case stderrors.Is(err, errors.ErrAlreadyMember),
		stderrors.Is(err, errors.ErrAlreadyInvited),
		stderrors.Is(err, errors.ErrNotInvited),
		stderrors.Is(err, errors.ErrRoomNotTrashed):
		return "conflict"
	default:
		return "store_unavailable"
	}
}
