package repositories

import (
	"testing"
	"time"

	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func Test_Create_User_Enforces_Uniqueness(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	user, err := repository.Create("alice@example.com", "alice", "hash")
	req.NoError(err)
	req.NotEmpty(user.ID)

	// Same email, different username
	_, err = repository.Create("alice@example.com", "alice2", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	// Same username, different email
	_, err = repository.Create("alice2@example.com", "alice", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_User_By_Indexes(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	created, err := repository.Create("alice@example.com", "alice", "hash")
	req.NoError(err)

	byID, err := repository.GetByID(created.ID)
	req.NoError(err)
	req.Equal(created.ID, byID.ID)

	byEmail, err := repository.GetByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)

	byUsername, err := repository.GetByUsername("alice")
	req.NoError(err)
	req.Equal(created.ID, byUsername.ID)

	_, err = repository.GetByUsername("nobody")
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_Invitation_Uniqueness_Per_Room(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	invitee, err := repository.Create("bob@example.com", "bob", "hash")
	req.NoError(err)

	req.NoError(repository.AddInvitation(invitee.ID, "room-1", "alice-id"))

	// A second invitation for the same room is a conflict, even from
	// another inviter
	req.ErrorIs(repository.AddInvitation(invitee.ID, "room-1", "alice-id"), errors.ErrAlreadyInvited)
	req.ErrorIs(repository.AddInvitation(invitee.ID, "room-1", "carol-id"), errors.ErrAlreadyInvited)

	// A different room is fine
	req.NoError(repository.AddInvitation(invitee.ID, "room-2", "alice-id"))

	invitations, err := repository.Invitations(invitee.ID)
	req.NoError(err)
	req.Len(invitations, 2)
}

func Test_RemoveInvitation_Returns_Inviter(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	invitee, err := repository.Create("bob@example.com", "bob", "hash")
	req.NoError(err)
	req.NoError(repository.AddInvitation(invitee.ID, "room-1", "alice-id"))

	removed, err := repository.RemoveInvitation(invitee.ID, "room-1")
	req.NoError(err)
	req.Equal("alice-id", string(removed.InviterID))

	// Removing again fails, and a removal never resurrects
	_, err = repository.RemoveInvitation(invitee.ID, "room-1")
	req.ErrorIs(err, errors.ErrNotInvited)

	invitations, err := repository.Invitations(invitee.ID)
	req.NoError(err)
	req.Empty(invitations)
}

func Test_LastRead_Round_Trip(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	user, err := repository.Create("alice@example.com", "alice", "hash")
	req.NoError(err)

	// Never marked: zero time
	mark, err := repository.LastRead(user.ID, "room-1")
	req.NoError(err)
	req.True(mark.IsZero())

	at := time.Now().UTC()
	req.NoError(repository.SetLastRead(user.ID, "room-1", at))

	mark, err = repository.LastRead(user.ID, "room-1")
	req.NoError(err)
	req.Equal(at.UnixNano(), mark.UnixNano())

	// Other rooms are unaffected
	mark, err = repository.LastRead(user.ID, "room-2")
	req.NoError(err)
	req.True(mark.IsZero())
}
