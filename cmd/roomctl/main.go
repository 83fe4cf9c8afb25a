// roomctl is an offline inspection tool for the relay's badger store.
// It lists rooms (active and trashed) and optionally dumps the tail of a
// room's message history. The store is opened read-only, so the tool is
// safe to run against a live data directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"chat-relay/domain"
	"chat-relay/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "/tmp/chat-relay", "Path to badger DB")
	roomID := flag.String("room", "", "Room ID: dump the room's recent messages instead of the room list")
	limit := flag.Int("limit", 50, "Number of messages to dump with -room")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *roomID != "" {
		err = dumpMessages(db, logger, domain.RoomID(*roomID), *limit)
	} else {
		err = dumpRooms(db, logger)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func dumpRooms(db *badger.DB, logger *slog.Logger) error {
	rooms, err := repositories.NewRoomRepository(db, logger).All()
	if err != nil {
		return err
	}

	table := newTable([]string{"ID", "Name", "Status", "Visibility", "Owner", "Members", "Created", "Deleted"})
	for _, room := range rooms {
		status := color.Green.Sprint("ACTIVE")
		deleted := ""
		if !room.IsActive() {
			status = color.Red.Sprint("TRASHED")
			deleted = room.DeletedAt.Format(time.RFC3339)
		}
		visibility := "public"
		if room.Private {
			visibility = "private"
		}
		table.Append([]string{
			shortID(string(room.ID)),
			room.Name,
			status,
			visibility,
			shortID(string(room.OwnerID)),
			fmt.Sprintf("%d", len(room.Members)),
			room.CreatedAt.Format(time.RFC3339),
			deleted,
		})
	}
	table.Render()
	return nil
}

func dumpMessages(db *badger.DB, logger *slog.Logger, roomID domain.RoomID, limit int) error {
	messages, err := repositories.NewMessageRepository(db, logger).Recent(roomID, limit)
	if err != nil {
		return err
	}

	table := newTable([]string{"Timestamp", "Sender", "Body"})
	for _, message := range messages {
		body := message.Body
		if len(body) > 80 {
			body = body[:80] + "…"
		}
		table.Append([]string{
			message.At.Format("2006-01-02 15:04:05"),
			message.SenderName,
			body,
		})
	}
	table.Render()
	return nil
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// shortID keeps the first 8 characters of a UUID for readability.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// A crashed writer can leave the value log in need of a truncate,
		// which a read-only open refuses to perform. Open once in write
		// mode to repair, then reopen read-only.
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
