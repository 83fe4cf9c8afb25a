package services

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/repositories"
)

// RoomSummary is a room as the listing surface presents it, with the
// derived unread count for the requesting user.
type RoomSummary struct {
	Room   domain.Room
	Unread int
}

type IRoomService interface {
	Create(ctx context.Context, name string, ownerID domain.UserID, private bool) (domain.Room, error)
	ListVisible(userID domain.UserID) ([]RoomSummary, error)
	ListTrash(ownerID domain.UserID) ([]domain.Room, error)
	SoftDelete(ctx context.Context, roomID domain.RoomID, ownerID domain.UserID) error
	Restore(ctx context.Context, roomID domain.RoomID, ownerID domain.UserID) (domain.Room, error)
	PermanentDelete(roomID domain.RoomID, ownerID domain.UserID) error
}

// RoomService owns the room lifecycle: Active -> Trashed -> Active, or
// Trashed -> Purged. Lifecycle changes trigger the matching global
// broadcasts; the reaper handles expiry-based purging separately.
type RoomService struct {
	log      *slog.Logger
	router   contract.IRouter
	rooms    repositories.IRoomRepository
	messages repositories.IMessageRepository
	users    repositories.IUserRepository
}

func NewRoomService(
	log *slog.Logger,
	router contract.IRouter,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
) *RoomService {
	return &RoomService{log: log, router: router, rooms: rooms, messages: messages, users: users}
}

// Create persists the room and, for public rooms only, announces it to all
// connected sessions. Private rooms stay invisible until an invitation.
func (s *RoomService) Create(ctx context.Context, name string, ownerID domain.UserID, private bool) (domain.Room, error) {
	room, err := s.rooms.Create(name, ownerID, private)
	if err != nil {
		return domain.Room{}, err
	}
	if !room.Private {
		s.router.Broadcast(ctx, event.RoomCreated{
			RoomID:  room.ID,
			Name:    room.Name,
			OwnerID: room.OwnerID,
			Private: room.Private,
		})
	}
	return room, nil
}

// ListVisible returns the rooms the user may see, each with its derived
// unread count.
func (s *RoomService) ListVisible(userID domain.UserID) ([]RoomSummary, error) {
	rooms, err := s.rooms.ListVisible(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		lastRead, err := s.users.LastRead(userID, room.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.messages.CountAfter(room.ID, lastRead)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, RoomSummary{Room: room, Unread: unread})
	}
	return summaries, nil
}

func (s *RoomService) ListTrash(ownerID domain.UserID) ([]domain.Room, error) {
	return s.rooms.ListTrash(ownerID)
}

// SoftDelete moves the room to the trash and tells every connected session
// to drop it. Live subscriptions are not forcibly dropped; sends re-check
// the active predicate and fail once the room is trashed.
func (s *RoomService) SoftDelete(ctx context.Context, roomID domain.RoomID, ownerID domain.UserID) error {
	if err := s.rooms.SoftDelete(roomID, ownerID, time.Now().UTC()); err != nil {
		return err
	}
	s.router.Broadcast(ctx, event.RoomDeleted{RoomID: roomID})
	return nil
}

// Restore clears the soft-delete marker and re-announces the room exactly
// like a creation, which re-adds it to every client's visible set.
func (s *RoomService) Restore(ctx context.Context, roomID domain.RoomID, ownerID domain.UserID) (domain.Room, error) {
	room, err := s.rooms.Restore(roomID, ownerID)
	if err != nil {
		return domain.Room{}, err
	}
	s.router.Broadcast(ctx, event.RoomCreated{
		RoomID:  room.ID,
		Name:    room.Name,
		OwnerID: room.OwnerID,
		Private: room.Private,
	})
	return room, nil
}

// PermanentDelete removes a trashed room for good. Its messages are
// orphaned, not deleted. No broadcast: clients already dropped the room
// when it entered the trash.
func (s *RoomService) PermanentDelete(roomID domain.RoomID, ownerID domain.UserID) error {
	return s.rooms.PermanentDelete(roomID, ownerID)
}
