package repositories

import (
	"chat-relay/errors"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func Test_Append_Stamps_Id_And_Timestamp(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default())

	stored, err := repository.Append("Alice", "hello there")
	req.NoError(err)
	req.NotZero(stored.ID)
	req.False(stored.At.IsZero())
	req.Equal("Alice", stored.Sender)
	req.Equal("hello there", stored.Content)
}

func Test_List_Returns_Appended_Order(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default())

	contents := []string{"first", "second", "third", "fourth"}
	for _, content := range contents {
		_, err = repository.Append("Bob", content)
		req.NoError(err)
	}

	fetched, err := repository.ListAscending()
	req.NoError(err)
	req.Len(fetched, len(contents))
	for i, message := range fetched {
		req.Equal(contents[i], message.Content)
	}
}

func Test_Failed_Append_Still_Returns_Monotonic_Stamp(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)

	repository := NewMessageRepository(db, slog.Default())

	persisted, err := repository.Append("alice", "before the outage")
	req.NoError(err)

	// Closing the store makes every write fail.
	req.NoError(db.Close())

	first, err := repository.Append("alice", "during the outage")
	req.ErrorIs(err, errors.ErrStorageUnavailable)
	req.NotZero(first.ID)
	req.True(first.At.After(persisted.At))

	second, err := repository.Append("alice", "still down")
	req.ErrorIs(err, errors.ErrStorageUnavailable)
	req.True(second.At.After(first.At))
}

func Test_Timestamps_Strictly_Increase(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default())

	// Appending in a tight loop forces nanosecond collisions on coarse
	// clocks; the stamps must still come out strictly increasing.
	var previous int64
	for i := 0; i < 100; i++ {
		stored, err := repository.Append("Clara", "tick")
		req.NoError(err)
		req.Greater(stored.At.UnixNano(), previous)
		previous = stored.At.UnixNano()
	}

	fetched, err := repository.ListAscending()
	req.NoError(err)
	req.Len(fetched, 100)
	for i := 1; i < len(fetched); i++ {
		req.True(fetched[i].At.After(fetched[i-1].At))
	}
}
