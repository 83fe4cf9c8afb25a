package repositories

import (
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/stretchr/testify/require"
)

func Test_Create_And_Get_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	created, err := repository.Create("general", "owner-id", false)
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.Equal([]domain.UserID{"owner-id"}, created.Members)

	fetched, err := repository.Get(created.ID)
	req.NoError(err)
	req.Equal(created.ID, fetched.ID)
	req.Equal("general", fetched.Name)
	req.True(fetched.IsActive())
}

func Test_Get_Unknown_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	_, err := repository.Get("nope")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_AddMember_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	room, err := repository.Create("general", "owner-id", false)
	req.NoError(err)

	// First join adds exactly one entry
	added, err := repository.AddMember(room.ID, "alice-id")
	req.NoError(err)
	req.True(added)

	// Repeated joins by the same user change nothing
	added, err = repository.AddMember(room.ID, "alice-id")
	req.NoError(err)
	req.False(added)

	fetched, err := repository.Get(room.ID)
	req.NoError(err)
	req.Equal([]domain.UserID{"owner-id", "alice-id"}, fetched.Members)
}

func Test_AddMember_Rejects_Trashed_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	room, err := repository.Create("general", "owner-id", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(room.ID, "owner-id", time.Now().UTC()))

	_, err = repository.AddMember(room.ID, "alice-id")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_SoftDelete_Restore_Lifecycle(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	room, err := repository.Create("general", "owner-id", false)
	req.NoError(err)

	// Only the owner may trash
	req.ErrorIs(repository.SoftDelete(room.ID, "intruder", time.Now().UTC()), errors.ErrNotOwner)

	deletedAt := time.Now().UTC()
	req.NoError(repository.SoftDelete(room.ID, "owner-id", deletedAt))

	trashed, err := repository.Get(room.ID)
	req.NoError(err)
	req.False(trashed.IsActive())
	req.Equal(deletedAt.UnixNano(), trashed.DeletedAt.UnixNano())

	// Trashing twice is a no-op, the original marker survives
	req.NoError(repository.SoftDelete(room.ID, "owner-id", deletedAt.Add(time.Hour)))
	trashed, err = repository.Get(room.ID)
	req.NoError(err)
	req.Equal(deletedAt.UnixNano(), trashed.DeletedAt.UnixNano())

	restored, err := repository.Restore(room.ID, "owner-id")
	req.NoError(err)
	req.True(restored.IsActive())
	req.Equal(room.ID, restored.ID)
}

func Test_ListVisible_Filters_By_Visibility_And_Membership(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	public, err := repository.Create("public", "owner-id", false)
	req.NoError(err)
	private, err := repository.Create("private", "owner-id", true)
	req.NoError(err)
	trashed, err := repository.Create("trashed", "owner-id", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(trashed.ID, "owner-id", time.Now().UTC()))

	// A stranger sees only the active public room
	visible, err := repository.ListVisible("stranger")
	req.NoError(err)
	req.Len(visible, 1)
	req.Equal(public.ID, visible[0].ID)

	// The owner sees the private room too, never the trashed one
	visible, err = repository.ListVisible("owner-id")
	req.NoError(err)
	req.Len(visible, 2)
	ids := []domain.RoomID{visible[0].ID, visible[1].ID}
	req.Contains(ids, public.ID)
	req.Contains(ids, private.ID)
}

func Test_ListTrash_Is_Owner_Scoped(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	mine, err := repository.Create("mine", "owner-id", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(mine.ID, "owner-id", time.Now().UTC()))

	other, err := repository.Create("other", "someone-else", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(other.ID, "someone-else", time.Now().UTC()))

	trash, err := repository.ListTrash("owner-id")
	req.NoError(err)
	req.Len(trash, 1)
	req.Equal(mine.ID, trash[0].ID)
}

func Test_PermanentDelete_Requires_Trash(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())

	room, err := repository.Create("general", "owner-id", false)
	req.NoError(err)

	// An active room cannot be deleted for good
	req.ErrorIs(repository.PermanentDelete(room.ID, "owner-id"), errors.ErrRoomNotTrashed)

	req.NoError(repository.SoftDelete(room.ID, "owner-id", time.Now().UTC()))
	req.ErrorIs(repository.PermanentDelete(room.ID, "intruder"), errors.ErrNotOwner)
	req.NoError(repository.PermanentDelete(room.ID, "owner-id"))

	_, err = repository.Get(room.ID)
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_PurgeExpired_Respects_Retention(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())
	retention := 72 * time.Hour
	now := time.Now().UTC()

	// Given a room trashed four days ago and one trashed yesterday
	expired, err := repository.Create("expired", "owner-id", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(expired.ID, "owner-id", now.Add(-4*24*time.Hour)))

	fresh, err := repository.Create("fresh", "owner-id", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(fresh.ID, "owner-id", now.Add(-24*time.Hour)))

	active, err := repository.Create("active", "owner-id", false)
	req.NoError(err)

	// When the reaper sweeps
	purged, err := repository.PurgeExpired(retention, now)
	req.NoError(err)

	// Then only the expired room is gone
	req.Equal([]domain.RoomID{expired.ID}, purged)
	_, err = repository.Get(expired.ID)
	req.ErrorIs(err, errors.ErrRoomNotFound)

	_, err = repository.Get(fresh.ID)
	req.NoError(err)
	_, err = repository.Get(active.ID)
	req.NoError(err)
}

func Test_PurgeExpired_Spares_Restored_Room(t *testing.T) {
	req := require.New(t)
	repository := NewRoomRepository(openTestDB(t), slog.Default())
	retention := 72 * time.Hour
	now := time.Now().UTC()

	// Given a room trashed on day 0 and restored on day 2
	room, err := repository.Create("general", "owner-id", false)
	req.NoError(err)
	req.NoError(repository.SoftDelete(room.ID, "owner-id", now.Add(-6*24*time.Hour)))
	_, err = repository.Restore(room.ID, "owner-id")
	req.NoError(err)

	// When the reaper sweeps well past the original expiry
	purged, err := repository.PurgeExpired(retention, now)
	req.NoError(err)

	// Then the restored room is untouched, with its history intact
	req.Empty(purged)
	fetched, err := repository.Get(room.ID)
	req.NoError(err)
	req.True(fetched.IsActive())
}
