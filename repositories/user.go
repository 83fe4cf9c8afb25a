//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// IUserRepository owns user records: credentials, pending invitations and
// per-room read marks. Invitation uniqueness per (room, invitee) is
// enforced inside a single transaction.
type IUserRepository interface {
	Create(email, username, passwordHash string) (domain.User, error)
	GetByID(userID domain.UserID) (domain.User, error)
	GetByEmail(email string) (domain.User, error)
	GetByUsername(username string) (domain.User, error)
	AddInvitation(inviteeID domain.UserID, roomID domain.RoomID, inviterID domain.UserID) error
	RemoveInvitation(userID domain.UserID, roomID domain.RoomID) (domain.Invitation, error)
	Invitations(userID domain.UserID) ([]domain.Invitation, error)
	SetLastRead(userID domain.UserID, roomID domain.RoomID, at time.Time) error
	LastRead(userID domain.UserID, roomID domain.RoomID) (time.Time, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db}
}

type storedInvitation struct {
	Inviter string `cbor:"1,keyasint"`
	At      int64  `cbor:"2,keyasint"`
}

type storedUser struct {
	ID           string                      `cbor:"1,keyasint"`
	Email        string                      `cbor:"2,keyasint"`
	Username     string                      `cbor:"3,keyasint"`
	PasswordHash string                      `cbor:"4,keyasint"`
	CreatedAt    int64                       `cbor:"5,keyasint"`
	Invitations  map[string]storedInvitation `cbor:"6,keyasint,omitempty"`
	LastRead     map[string]int64            `cbor:"7,keyasint,omitempty"`
}

// The record lives under user:{id}; two index keys resolve the unique
// email and username to the id.
func userKey(userID domain.UserID) []byte { return []byte("user:" + userID) }
func emailKey(email string) []byte        { return []byte("user_email:" + email) }
func usernameKey(username string) []byte  { return []byte("user_name:" + username) }

// Create persists a new user. Email and username uniqueness are checked
// through the index keys in the same transaction as the writes.
func (u *UserRepository) Create(email, username, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := cbor.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(emailKey(email), []byte(user.ID)); err != nil {
			return err
		}
		if err := txn.Set(usernameKey(username), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetByID(userID domain.UserID) (domain.User, error) {
	var stored storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		return getUserLocked(txn, userID, &stored)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(stored), nil
}

func (u *UserRepository) GetByEmail(email string) (domain.User, error) {
	return u.getByIndex(emailKey(email))
}

func (u *UserRepository) GetByUsername(username string) (domain.User, error) {
	return u.getByIndex(usernameKey(username))
}

func (u *UserRepository) getByIndex(indexKey []byte) (domain.User, error) {
	var stored storedUser
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(indexKey)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		var userID domain.UserID
		err = item.Value(func(val []byte) error {
			userID = domain.UserID(val)
			return nil
		})
		if err != nil {
			return err
		}
		return getUserLocked(txn, userID, &stored)
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(stored), nil
}

// AddInvitation attaches a pending invitation to the invitee, failing if
// one already exists for the same room. Check and write share a transaction.
func (u *UserRepository) AddInvitation(inviteeID domain.UserID, roomID domain.RoomID, inviterID domain.UserID) error {
	return u.db.Update(func(txn *badger.Txn) error {
		var stored storedUser
		if err := getUserLocked(txn, inviteeID, &stored); err != nil {
			return err
		}
		if stored.Invitations == nil {
			stored.Invitations = make(map[string]storedInvitation)
		}
		if _, ok := stored.Invitations[string(roomID)]; ok {
			return errors.ErrAlreadyInvited
		}
		stored.Invitations[string(roomID)] = storedInvitation{
			Inviter: string(inviterID),
			At:      time.Now().UTC().UnixNano(),
		}
		return setUserLocked(txn, stored)
	})
}

// RemoveInvitation deletes the pending invitation for the room and returns
// it, so callers can still notify the original inviter.
func (u *UserRepository) RemoveInvitation(userID domain.UserID, roomID domain.RoomID) (domain.Invitation, error) {
	var removed domain.Invitation
	err := u.db.Update(func(txn *badger.Txn) error {
		var stored storedUser
		if err := getUserLocked(txn, userID, &stored); err != nil {
			return err
		}
		invitation, ok := stored.Invitations[string(roomID)]
		if !ok {
			return errors.ErrNotInvited
		}
		removed = domain.Invitation{
			RoomID:    roomID,
			InviterID: domain.UserID(invitation.Inviter),
			At:        time.Unix(0, invitation.At).UTC(),
		}
		delete(stored.Invitations, string(roomID))
		return setUserLocked(txn, stored)
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	return removed, nil
}

func (u *UserRepository) Invitations(userID domain.UserID) ([]domain.Invitation, error) {
	user, err := u.GetByID(userID)
	if err != nil {
		return nil, err
	}
	invitations := make([]domain.Invitation, 0, len(user.Invitations))
	for _, invitation := range user.Invitations {
		invitations = append(invitations, invitation)
	}
	return invitations, nil
}

// SetLastRead advances the read mark for (user, room) to the given instant.
func (u *UserRepository) SetLastRead(userID domain.UserID, roomID domain.RoomID, at time.Time) error {
	return u.db.Update(func(txn *badger.Txn) error {
		var stored storedUser
		if err := getUserLocked(txn, userID, &stored); err != nil {
			return err
		}
		if stored.LastRead == nil {
			stored.LastRead = make(map[string]int64)
		}
		stored.LastRead[string(roomID)] = at.UnixNano()
		return setUserLocked(txn, stored)
	})
}

// LastRead returns the read mark for (user, room), or the zero time if the
// user never marked the room read.
func (u *UserRepository) LastRead(userID domain.UserID, roomID domain.RoomID) (time.Time, error) {
	user, err := u.GetByID(userID)
	if err != nil {
		return time.Time{}, err
	}
	at, ok := user.LastRead[roomID]
	if !ok {
		return time.Time{}, nil
	}
	return at, nil
}

func getUserLocked(txn *badger.Txn, userID domain.UserID, stored *storedUser) error {
	item, err := txn.Get(userKey(userID))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, stored)
	})
}

func setUserLocked(txn *badger.Txn, stored storedUser) error {
	data, err := cbor.Marshal(stored)
	if err != nil {
		return err
	}
	return txn.Set(userKey(domain.UserID(stored.ID)), data)
}

func fromUser(user domain.User) storedUser {
	stored := storedUser{
		ID:           string(user.ID),
		Email:        user.Email,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt.UnixNano(),
	}
	for roomID, invitation := range user.Invitations {
		if stored.Invitations == nil {
			stored.Invitations = make(map[string]storedInvitation)
		}
		stored.Invitations[string(roomID)] = storedInvitation{
			Inviter: string(invitation.InviterID),
			At:      invitation.At.UnixNano(),
		}
	}
	for roomID, at := range user.LastRead {
		if stored.LastRead == nil {
			stored.LastRead = make(map[string]int64)
		}
		stored.LastRead[string(roomID)] = at.UnixNano()
	}
	return stored
}

func toUser(stored storedUser) domain.User {
	user := domain.User{
		ID:           domain.UserID(stored.ID),
		Email:        stored.Email,
		Username:     stored.Username,
		PasswordHash: stored.PasswordHash,
		CreatedAt:    time.Unix(0, stored.CreatedAt).UTC(),
	}
	for roomID, invitation := range stored.Invitations {
		if user.Invitations == nil {
			user.Invitations = make(map[domain.RoomID]domain.Invitation)
		}
		user.Invitations[domain.RoomID(roomID)] = domain.Invitation{
			RoomID:    domain.RoomID(roomID),
			InviterID: domain.UserID(invitation.Inviter),
			At:        time.Unix(0, invitation.At).UTC(),
		}
	}
	for roomID, at := range stored.LastRead {
		if user.LastRead == nil {
			user.LastRead = make(map[domain.RoomID]time.Time)
		}
		user.LastRead[domain.RoomID(roomID)] = time.Unix(0, at).UTC()
	}
	return user
}
