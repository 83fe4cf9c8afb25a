// Package domain contains core concepts of the messaging relay.
// This file defines Room entities and their lifecycle rules.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"
)

type RoomID string

// Room scopes message delivery and history. Visibility controls admission:
// a private room's member set is the sole admission list, while a public
// room admits any authenticated user and records them as a member on join.
type Room struct {
	ID        RoomID
	Name      string
	OwnerID   UserID
	Private   bool
	Members   []UserID
	CreatedAt time.Time
	DeletedAt *time.Time
}

// IsActive reports whether the room is visible for listing and joinable.
// This is the single predicate shared by the REST listing path and the
// socket join path, so a trashed room can never be freshly joined.
func (r Room) IsActive() bool {
	return r.DeletedAt == nil
}

// IsMember reports whether the user belongs to the member set.
// The owner is always implicitly a member.
func (r Room) IsMember(userID UserID) bool {
	if r.OwnerID == userID {
		return true
	}
	for _, m := range r.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// TrashedLongerThan reports whether the room has been in the trash for at
// least the given retention window.
func (r Room) TrashedLongerThan(retention time.Duration, now time.Time) bool {
	if r.DeletedAt == nil {
		return false
	}
	return now.Sub(*r.DeletedAt) >= retention
}
