package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/metrics"
	"chat-relay/repositories"
)

// Reaper permanently removes rooms whose soft-delete marker is older than
// the retention window. Purging is delegated to the room store, which
// re-checks each candidate inside its own transaction: a room restored
// between the scan and the delete is left alone.
//
// No notification is sent on purge; clients already treat trashed rooms as
// gone.
type Reaper struct {
	log       *slog.Logger
	rooms     repositories.IRoomRepository
	interval  time.Duration
	retention time.Duration
}

func NewReaper(log *slog.Logger, rooms repositories.IRoomRepository, interval, retention time.Duration) *Reaper {
	return &Reaper{log: log, rooms: rooms, interval: interval, retention: retention}
}

func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Context done, stopping reaper")
			return nil
		case <-ticker.C:
			if err := r.sweep(); err != nil {
				r.log.Error("Trash sweep failed", "error", err)
			}
		}
	}
}

func (r *Reaper) sweep() error {
	purged, err := r.rooms.PurgeExpired(r.retention, time.Now().UTC())
	if err != nil {
		return err
	}
	for _, roomID := range purged {
		r.log.Info("Purged expired room", "room_id", roomID)
		metrics.RoomsPurged.Inc()
	}
	return nil
}
