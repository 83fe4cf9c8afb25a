package event

import (
	"time"

	"chat-relay/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything the fan-out router can deliver to a sink.
type DomainEvent interface {
	EventName() string
}

// MessageBroadcast carries a persisted message to every subscriber of its
// room. It references the stored record: same ID, same timestamp.
type MessageBroadcast struct {
	ID         uuid.UUID
	RoomID     domain.RoomID
	SenderID   domain.UserID
	SenderName string
	Body       string
	At         time.Time
}

func (MessageBroadcast) EventName() string { return "chat_message" }

// RoomCreated announces a new public room to all connected sessions.
// A restore re-uses this announcement, which re-adds the room client-side.
type RoomCreated struct {
	RoomID  domain.RoomID
	Name    string
	OwnerID domain.UserID
	Private bool
}

func (RoomCreated) EventName() string { return "room_created" }

// RoomDeleted announces that a room was moved to the trash so clients drop
// it from their visible set.
type RoomDeleted struct {
	RoomID domain.RoomID
}

func (RoomDeleted) EventName() string { return "room_deleted" }

// InvitationReceived is delivered on the invitee's personal channel.
type InvitationReceived struct {
	RoomID      domain.RoomID
	RoomName    string
	InviterID   domain.UserID
	InviterName string
}

func (InvitationReceived) EventName() string { return "invitation_received" }

// InvitationAccepted is delivered on the room owner's personal channel.
type InvitationAccepted struct {
	RoomID       domain.RoomID
	RoomName     string
	AccepterName string
}

func (InvitationAccepted) EventName() string { return "invitation_accepted" }

// InvitationRejected is delivered on the original inviter's personal channel.
type InvitationRejected struct {
	RoomID       domain.RoomID
	RejecterName string
}

func (InvitationRejected) EventName() string { return "invitation_rejected" }
