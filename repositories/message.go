//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-relay/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Append(sender, content string) (DiskMessage, error)
	ListAscending() ([]DiskMessage, error)
}

// MessageRepository is the append-only transcript store. Identifiers and
// timestamps are assigned here, at append time; whatever the client sent
// is already gone by the time a message reaches this layer.
type MessageRepository struct {
	db       *badger.DB
	log      *slog.Logger
	mu       sync.Mutex
	lastNano int64
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// DiskMessage is the stored form of a chat message. Presence events are
// never written here.
type DiskMessage struct {
	ID      uuid.UUID `json:"id"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

const messagePrefix = "msg:"

// Append stamps and persists a message. The key is formatted as
// "msg:{timestamp_padded}:{uuid}" so a forward prefix scan returns the
// transcript in time order: 19-digit zero padding makes the lexicographic
// order match the chronological one, and the UUID disambiguates the key if
// two messages ever share a nanosecond.
//
// Stamps are strictly increasing within the process, which keeps ties out
// of the ordering entirely: if the wall clock stalls or steps back, the
// previous stamp plus one nanosecond wins.
//
// On a write failure the stamped message is returned alongside
// ErrStorageUnavailable, so callers that broadcast despite the outage keep
// the same monotonic stamping as the persisted path.
func (m *MessageRepository) Append(sender, content string) (DiskMessage, error) {
	message := DiskMessage{
		ID:      uuid.New(),
		Sender:  sender,
		Content: content,
		At:      m.stamp(),
	}
	key := fmt.Sprintf("%s%019d:%s", messagePrefix, message.At.UnixNano(), message.ID)
	bytes, err := json.Marshal(message)
	if err != nil {
		return message, fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return message, fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	return message, nil
}

func (m *MessageRepository) stamp() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	nano := time.Now().UTC().UnixNano()
	if nano <= m.lastNano {
		nano = m.lastNano + 1
	}
	m.lastNano = nano
	return time.Unix(0, nano).UTC()
}

// ListAscending returns every stored message by ascending timestamp.
// Thanks to the padded timestamp in the key, a plain forward iteration is
// already the right order; no sort pass is needed.
func (m *MessageRepository) ListAscending() ([]DiskMessage, error) {
	var messages []DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(messagePrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek([]byte(messagePrefix)); it.ValidForPrefix([]byte(messagePrefix)); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var message DiskMessage
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	return messages, nil
}
