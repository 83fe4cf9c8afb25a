// Package domain contains core concepts of the messaging relay.
// This file defines Message records and related rules.
// Messages are immutable once created; the relay never edits or deletes them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable chat record. The timestamp is assigned by the
// server at the point of durable write, before broadcast, so every
// recipient sees the exact same persisted record.
type Message struct {
	ID         uuid.UUID
	RoomID     RoomID
	SenderID   UserID
	SenderName string
	Body       string
	At         time.Time
}
