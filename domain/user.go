package domain

import "time"

type UserID string

// Invitation attaches a pending room invite to the invitee's user record.
// At most one pending invitation exists per (room, invitee) pair.
type Invitation struct {
	RoomID    RoomID
	InviterID UserID
	At        time.Time
}

// User is an authenticated identity. Invitations are indexed by room for
// O(1) duplicate checks. LastRead holds per-room read marks used to derive
// unread counts; it only advances on an explicit mark-read action.
type User struct {
	ID           UserID
	Email        string
	Username     string
	PasswordHash string
	Invitations  map[RoomID]Invitation
	LastRead     map[RoomID]time.Time
	CreatedAt    time.Time
}
