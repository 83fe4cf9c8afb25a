//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// IMessageRepository is the durable append-only history store.
type IMessageRepository interface {
	Append(message domain.Message) (domain.Message, error)
	Recent(roomID domain.RoomID, limit int) ([]domain.Message, error)
	CountAfter(roomID domain.RoomID, after time.Time) (int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// storedMessage is the on-disk shape of a message, encoded with CBOR.
type storedMessage struct {
	ID         string `cbor:"1,keyasint"`
	Room       string `cbor:"2,keyasint"`
	Sender     string `cbor:"3,keyasint"`
	SenderName string `cbor:"4,keyasint"`
	Body       string `cbor:"5,keyasint"`
	At         int64  `cbor:"6,keyasint"`
}

// messageKey formats keys as "msg:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func messageKey(roomID domain.RoomID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", roomID, at.UnixNano(), id))
}

// Append persists a message. The repository assigns the identifier and the
// timestamp at the point of durable write, before any broadcast, and
// returns the completed record so caller and subscribers share it.
func (m MessageRepository) Append(message domain.Message) (domain.Message, error) {
	message.ID = uuid.New()
	message.At = time.Now().UTC()

	bytes, err := cbor.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message.RoomID, message.At, message.ID), bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// Recent returns the most recent messages of a room in ascending timestamp
// order, capped at limit. Thanks to the padded timestamp in the key the
// reverse iterator yields newest-first; the slice is flipped before return.
func (m MessageRepository) Recent(roomID domain.RoomID, limit int) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var stored storedMessage
		if err = cbor.Unmarshal(raw[i], &stored); err != nil {
			return nil, err
		}
		message, err := toMessage(stored)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// CountAfter counts persisted messages of a room with a timestamp strictly
// greater than the given instant. Used to derive unread counts.
func (m MessageRepository) CountAfter(roomID domain.RoomID, after time.Time) (int, error) {
	count := 0
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		// Strictly greater: seek one nanosecond past the mark.
		seekKey := append(append([]byte{}, prefix...),
			[]byte(fmt.Sprintf("%019d", after.UnixNano()+1))...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

func fromMessage(message domain.Message) storedMessage {
	return storedMessage{
		ID:         message.ID.String(),
		Room:       string(message.RoomID),
		Sender:     string(message.SenderID),
		SenderName: message.SenderName,
		Body:       message.Body,
		At:         message.At.UnixNano(),
	}
}

func toMessage(stored storedMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(stored.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         parsedID,
		RoomID:     domain.RoomID(stored.Room),
		SenderID:   domain.UserID(stored.Sender),
		SenderName: stored.SenderName,
		Body:       stored.Body,
		At:         time.Unix(0, stored.At).UTC(),
	}, nil
}
