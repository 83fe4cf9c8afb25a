package services

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/repositories"
)

// InvitationView joins a pending invitation with the room and inviter
// names for the listing surface.
type InvitationView struct {
	RoomID      domain.RoomID
	RoomName    string
	InviterID   domain.UserID
	InviterName string
}

type IInvitationService interface {
	Invite(ctx context.Context, roomID domain.RoomID, inviterID domain.UserID, inviterName, inviteeUsername string) error
	Accept(ctx context.Context, roomID domain.RoomID, inviteeID domain.UserID, inviteeName string) (domain.Room, error)
	Reject(ctx context.Context, roomID domain.RoomID, userID domain.UserID, rejecterName string) error
	List(userID domain.UserID) ([]InvitationView, error)
}

// InvitationService runs the invite/accept/reject workflow for private
// rooms. Notifications go to personal channels, never to room fan-out.
type InvitationService struct {
	log    *slog.Logger
	router contract.IRouter
	rooms  repositories.IRoomRepository
	users  repositories.IUserRepository
}

func NewInvitationService(
	log *slog.Logger,
	router contract.IRouter,
	rooms repositories.IRoomRepository,
	users repositories.IUserRepository,
) *InvitationService {
	return &InvitationService{log: log, router: router, rooms: rooms, users: users}
}

// Invite attaches a pending invitation to the invitee and notifies their
// personal channel. Only the room owner may invite; inviting a member or
// an already-invited user is a conflict, and no state changes on failure.
func (s *InvitationService) Invite(ctx context.Context, roomID domain.RoomID, inviterID domain.UserID, inviterName, inviteeUsername string) error {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return err
	}
	if !room.IsActive() {
		return errors.ErrRoomNotFound
	}
	if room.OwnerID != inviterID {
		return errors.ErrNotOwner
	}

	invitee, err := s.users.GetByUsername(inviteeUsername)
	if err != nil {
		return err
	}
	if room.IsMember(invitee.ID) {
		return errors.ErrAlreadyMember
	}

	// Uniqueness per (room, invitee) is enforced by the store.
	if err := s.users.AddInvitation(invitee.ID, roomID, inviterID); err != nil {
		return err
	}

	s.router.PublishToUser(ctx, invitee.ID, event.InvitationReceived{
		RoomID:      room.ID,
		RoomName:    room.Name,
		InviterID:   inviterID,
		InviterName: inviterName,
	})
	return nil
}

// Accept removes the pending invitation, adds the invitee to the member
// set (idempotent if already a member) and notifies the room owner's
// personal channel. The joined room is returned so the caller's room list
// can update immediately.
func (s *InvitationService) Accept(ctx context.Context, roomID domain.RoomID, inviteeID domain.UserID, inviteeName string) (domain.Room, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return domain.Room{}, err
	}
	if !room.IsActive() {
		return domain.Room{}, errors.ErrRoomNotFound
	}

	if _, err := s.users.RemoveInvitation(inviteeID, roomID); err != nil {
		return domain.Room{}, err
	}
	if _, err := s.rooms.AddMember(roomID, inviteeID); err != nil {
		return domain.Room{}, err
	}

	s.router.PublishToUser(ctx, room.OwnerID, event.InvitationAccepted{
		RoomID:       room.ID,
		RoomName:     room.Name,
		AccepterName: inviteeName,
	})
	return room, nil
}

// Reject removes the pending invitation and notifies the original inviter.
// If the inviter can no longer be resolved the rejection still succeeds,
// silently.
func (s *InvitationService) Reject(ctx context.Context, roomID domain.RoomID, userID domain.UserID, rejecterName string) error {
	removed, err := s.users.RemoveInvitation(userID, roomID)
	if err != nil {
		return err
	}

	if _, err := s.users.GetByID(removed.InviterID); err != nil {
		s.log.Debug("Inviter not resolvable, skipping rejection notice",
			"room_id", roomID, "inviter_id", removed.InviterID)
		return nil
	}

	s.router.PublishToUser(ctx, removed.InviterID, event.InvitationRejected{
		RoomID:       roomID,
		RejecterName: rejecterName,
	})
	return nil
}

// List returns the user's pending invitations, dropping entries whose room
// or inviter no longer resolves.
func (s *InvitationService) List(userID domain.UserID) ([]InvitationView, error) {
	invitations, err := s.users.Invitations(userID)
	if err != nil {
		return nil, err
	}

	views := make([]InvitationView, 0, len(invitations))
	for _, invitation := range invitations {
		room, err := s.rooms.Get(invitation.RoomID)
		if err != nil {
			continue
		}
		inviter, err := s.users.GetByID(invitation.InviterID)
		if err != nil {
			continue
		}
		views = append(views, InvitationView{
			RoomID:      room.ID,
			RoomName:    room.Name,
			InviterID:   inviter.ID,
			InviterName: inviter.Username,
		})
	}
	return views, nil
}
