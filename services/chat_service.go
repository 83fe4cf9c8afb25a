package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/metrics"
	"chat-relay/moderation"
	"chat-relay/repositories"
)

type IChatService interface {
	JoinRoom(ctx context.Context, connID contract.ConnectionID, userID domain.UserID, roomID domain.RoomID) ([]domain.Message, error)
	SendMessage(ctx context.Context, connID contract.ConnectionID, userID domain.UserID, senderName string, roomID domain.RoomID, body string) error
	UnreadCount(userID domain.UserID, roomID domain.RoomID) (int, error)
	MarkRead(userID domain.UserID, roomID domain.RoomID) error
}

// ChatService is the room-membership-aware relay core: it turns join and
// send intents into correctly-scoped, ordered, access-controlled
// broadcasts, backed by durable history.
type ChatService struct {
	log          *slog.Logger
	router       contract.IRouter
	rooms        repositories.IRoomRepository
	messages     repositories.IMessageRepository
	users        repositories.IUserRepository
	moderator    *moderation.Moderator
	historyLimit int
	maxBodyLen   int
}

func NewChatService(
	log *slog.Logger,
	router contract.IRouter,
	rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	moderator *moderation.Moderator,
	historyLimit, maxBodyLen int,
) *ChatService {
	return &ChatService{
		log:          log,
		router:       router,
		rooms:        rooms,
		messages:     messages,
		users:        users,
		moderator:    moderator,
		historyLimit: historyLimit,
		maxBodyLen:   maxBodyLen,
	}
}

// JoinRoom admits or denies the connection and, on admission, subscribes it
// to the room's fan-out set and returns the recent history in ascending
// timestamp order.
//
// Admission for a public room the user is not yet a member of goes through
// the store's atomic add-to-set, so concurrent joins by the same user from
// several connections produce exactly one membership entry.
func (s *ChatService) JoinRoom(ctx context.Context, connID contract.ConnectionID, userID domain.UserID, roomID domain.RoomID) ([]domain.Message, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive() {
		// Trashed rooms never resolve for a fresh join, even from a stale
		// client-side reference.
		return nil, errors.ErrRoomNotFound
	}

	switch domain.Evaluate(room, userID) {
	case domain.Deny:
		return nil, errors.ErrAccessDenied
	case domain.AdmitAutoJoin:
		if _, err := s.rooms.AddMember(roomID, userID); err != nil {
			return nil, err
		}
	case domain.Admit:
	}

	s.router.Subscribe(connID, roomID)

	history, err := s.messages.Recent(roomID, s.historyLimit)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// SendMessage appends the message to the history store, then publishes the
// stored record to every current subscriber of the room, sender included.
// Append happens-before publish: every recipient sees the exact same
// persisted record, timestamp assigned at the point of durable write.
//
// The live subscription is the authorization artifact; there is no
// membership lookup at send time. The room is still resolved through the
// same active-room predicate as Join, so a send to a trashed or purged
// room fails instead of writing into a dangling record.
func (s *ChatService) SendMessage(ctx context.Context, connID contract.ConnectionID, userID domain.UserID, senderName string, roomID domain.RoomID, body string) error {
	if !s.router.IsSubscribed(connID, roomID) {
		return errors.ErrNotSubscribed
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return errors.ErrEmptyMessage
	}
	if len(body) > s.maxBodyLen {
		return errors.ErrMessageTooLong
	}

	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	if !room.IsActive() {
		return errors.ErrRoomNotFound
	}

	stored, err := s.messages.Append(domain.Message{
		RoomID:     roomID,
		SenderID:   userID,
		SenderName: senderName,
		Body:       s.moderator.Censor(body),
	})
	if err != nil {
		return err
	}
	metrics.MessagesStored.Inc()

	s.router.Publish(ctx, roomID, event.MessageBroadcast{
		ID:         stored.ID,
		RoomID:     stored.RoomID,
		SenderID:   stored.SenderID,
		SenderName: stored.SenderName,
		Body:       stored.Body,
		At:         stored.At,
	})
	return nil
}

// UnreadCount derives the number of messages with a timestamp strictly
// greater than the user's read mark for the room. A user who never marked
// the room read counts everything.
func (s *ChatService) UnreadCount(userID domain.UserID, roomID domain.RoomID) (int, error) {
	lastRead, err := s.users.LastRead(userID, roomID)
	if err != nil {
		return 0, err
	}
	return s.messages.CountAfter(roomID, lastRead)
}

// MarkRead advances the read mark to now. No lock against concurrent
// sends: a message arriving between count and mark is simply counted as
// unread again on the next fetch.
func (s *ChatService) MarkRead(userID domain.UserID, roomID domain.RoomID) error {
	return s.users.SetLastRead(userID, roomID, time.Now().UTC())
}
