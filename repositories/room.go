//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// IRoomRepository is the durable membership store for rooms.
//
// Every conditional mutation (AddMember, SoftDelete, Restore,
// PermanentDelete, PurgeExpired) runs inside a single badger transaction.
// Badger serializes conflicting read-write transactions, so these are the
// store-level atomic primitives the relay relies on: auto-join is an
// add-to-set-if-absent, purge is a compare-and-delete.
type IRoomRepository interface {
	Create(name string, ownerID domain.UserID, private bool) (domain.Room, error)
	Get(roomID domain.RoomID) (domain.Room, error)
	ListVisible(userID domain.UserID) ([]domain.Room, error)
	ListTrash(ownerID domain.UserID) ([]domain.Room, error)
	AddMember(roomID domain.RoomID, userID domain.UserID) (bool, error)
	SoftDelete(roomID domain.RoomID, ownerID domain.UserID, now time.Time) error
	Restore(roomID domain.RoomID, ownerID domain.UserID) (domain.Room, error)
	PermanentDelete(roomID domain.RoomID, ownerID domain.UserID) error
	PurgeExpired(retention time.Duration, now time.Time) ([]domain.RoomID, error)
}

type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log}
}

type storedRoom struct {
	ID        string   `cbor:"1,keyasint"`
	Name      string   `cbor:"2,keyasint"`
	Owner     string   `cbor:"3,keyasint"`
	Private   bool     `cbor:"4,keyasint"`
	Members   []string `cbor:"5,keyasint"`
	CreatedAt int64    `cbor:"6,keyasint"`
	DeletedAt *int64   `cbor:"7,keyasint,omitempty"`
}

func roomKey(roomID domain.RoomID) []byte {
	return []byte(fmt.Sprintf("room:%s", roomID))
}

// Create persists a new room with the owner as its first member.
func (r RoomRepository) Create(name string, ownerID domain.UserID, private bool) (domain.Room, error) {
	room := domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      name,
		OwnerID:   ownerID,
		Private:   private,
		Members:   []domain.UserID{ownerID},
		CreatedAt: time.Now().UTC(),
	}
	bytes, err := cbor.Marshal(fromRoom(room))
	if err != nil {
		return domain.Room{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(room.ID), bytes)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r RoomRepository) Get(roomID domain.RoomID) (domain.Room, error) {
	var stored storedRoom
	err := r.db.View(func(txn *badger.Txn) error {
		return getRoomLocked(txn, roomID, &stored)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return toRoom(stored), nil
}

// ListVisible returns active rooms the user may see: public ones, plus
// private ones where the user is a member.
func (r RoomRepository) ListVisible(userID domain.UserID) ([]domain.Room, error) {
	rooms, err := r.scan()
	if err != nil {
		return nil, err
	}
	return lo.Filter(rooms, func(room domain.Room, _ int) bool {
		return room.IsActive() && (!room.Private || room.IsMember(userID))
	}), nil
}

// ListTrash returns the owner's soft-deleted rooms.
func (r RoomRepository) ListTrash(ownerID domain.UserID) ([]domain.Room, error) {
	rooms, err := r.scan()
	if err != nil {
		return nil, err
	}
	return lo.Filter(rooms, func(room domain.Room, _ int) bool {
		return !room.IsActive() && room.OwnerID == ownerID
	}), nil
}

// AddMember atomically adds the user to the room's member set if absent.
// It reports whether an entry was added, so repeated or concurrent joins by
// the same user result in exactly one membership entry. Trashed rooms do
// not resolve.
func (r RoomRepository) AddMember(roomID domain.RoomID, userID domain.UserID) (bool, error) {
	added := false
	err := r.db.Update(func(txn *badger.Txn) error {
		var stored storedRoom
		if err := getRoomLocked(txn, roomID, &stored); err != nil {
			return err
		}
		room := toRoom(stored)
		if !room.IsActive() {
			return errors.ErrRoomNotFound
		}
		if room.IsMember(userID) {
			return nil
		}
		stored.Members = append(stored.Members, string(userID))
		added = true
		return setRoomLocked(txn, stored)
	})
	return added, err
}

// SoftDelete moves an active room to the trash, stamping the deletion
// instant. Owner-only. Deleting an already-trashed room is a no-op.
func (r RoomRepository) SoftDelete(roomID domain.RoomID, ownerID domain.UserID, now time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var stored storedRoom
		if err := getRoomLocked(txn, roomID, &stored); err != nil {
			return err
		}
		if stored.Owner != string(ownerID) {
			return errors.ErrNotOwner
		}
		if stored.DeletedAt != nil {
			return nil
		}
		stored.DeletedAt = lo.ToPtr(now.UnixNano())
		return setRoomLocked(txn, stored)
	})
}

// Restore clears the soft-delete marker and returns the restored room.
// Owner-only. Restoring an active room is a no-op.
func (r RoomRepository) Restore(roomID domain.RoomID, ownerID domain.UserID) (domain.Room, error) {
	var restored storedRoom
	err := r.db.Update(func(txn *badger.Txn) error {
		var stored storedRoom
		if err := getRoomLocked(txn, roomID, &stored); err != nil {
			return err
		}
		if stored.Owner != string(ownerID) {
			return errors.ErrNotOwner
		}
		stored.DeletedAt = nil
		restored = stored
		return setRoomLocked(txn, stored)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return toRoom(restored), nil
}

// PermanentDelete removes the room record entirely. Owner-only and valid
// only from the trash; messages are orphaned, not deleted.
func (r RoomRepository) PermanentDelete(roomID domain.RoomID, ownerID domain.UserID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var stored storedRoom
		if err := getRoomLocked(txn, roomID, &stored); err != nil {
			return err
		}
		if stored.Owner != string(ownerID) {
			return errors.ErrNotOwner
		}
		if stored.DeletedAt == nil {
			return errors.ErrRoomNotTrashed
		}
		return txn.Delete(roomKey(roomID))
	})
}

// PurgeExpired removes every trashed room whose soft-delete marker is older
// than the retention window. Each deletion re-checks the room's state
// inside its own transaction (compare-and-delete), so a restore racing the
// reaper wins: a room restored before the purge executes is left alone.
func (r RoomRepository) PurgeExpired(retention time.Duration, now time.Time) ([]domain.RoomID, error) {
	rooms, err := r.scan()
	if err != nil {
		return nil, err
	}

	var purged []domain.RoomID
	for _, room := range rooms {
		if !room.TrashedLongerThan(retention, now) {
			continue
		}
		err := r.db.Update(func(txn *badger.Txn) error {
			var stored storedRoom
			if err := getRoomLocked(txn, room.ID, &stored); err != nil {
				return err
			}
			if !toRoom(stored).TrashedLongerThan(retention, now) {
				return nil
			}
			purged = append(purged, room.ID)
			return txn.Delete(roomKey(room.ID))
		})
		if err != nil && !stderrors.Is(err, errors.ErrRoomNotFound) {
			return purged, err
		}
	}
	return purged, nil
}

// All returns every stored room, trashed ones included. Inspection only.
func (r RoomRepository) All() ([]domain.Room, error) {
	return r.scan()
}

func (r RoomRepository) scan() ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("room:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var stored storedRoom
				if err := cbor.Unmarshal(value, &stored); err != nil {
					return err
				}
				rooms = append(rooms, toRoom(stored))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rooms, err
}

func getRoomLocked(txn *badger.Txn, roomID domain.RoomID, stored *storedRoom) error {
	item, err := txn.Get(roomKey(roomID))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, stored)
	})
}

func setRoomLocked(txn *badger.Txn, stored storedRoom) error {
	bytes, err := cbor.Marshal(stored)
	if err != nil {
		return err
	}
	return txn.Set(roomKey(domain.RoomID(stored.ID)), bytes)
}

func fromRoom(room domain.Room) storedRoom {
	return storedRoom{
		ID:      string(room.ID),
		Name:    room.Name,
		Owner:   string(room.OwnerID),
		Private: room.Private,
		Members: lo.Map(room.Members, func(m domain.UserID, _ int) string {
			return string(m)
		}),
		CreatedAt: room.CreatedAt.UnixNano(),
		DeletedAt: deletedAtNano(room.DeletedAt),
	}
}

func toRoom(stored storedRoom) domain.Room {
	room := domain.Room{
		ID:      domain.RoomID(stored.ID),
		Name:    stored.Name,
		OwnerID: domain.UserID(stored.Owner),
		Private: stored.Private,
		Members: lo.Map(stored.Members, func(m string, _ int) domain.UserID {
			return domain.UserID(m)
		}),
		CreatedAt: time.Unix(0, stored.CreatedAt).UTC(),
	}
	if stored.DeletedAt != nil {
		room.DeletedAt = lo.ToPtr(time.Unix(0, *stored.DeletedAt).UTC())
	}
	return room
}

func deletedAtNano(at *time.Time) *int64 {
	if at == nil {
		return nil
	}
	return lo.ToPtr(at.UnixNano())
}
