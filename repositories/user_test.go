package repositories

import (
	"chat-relay/errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func Test_Create_And_Fetch_User(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewUserRepository(db)

	id, err := repository.CreateUser("alice", "$argon2id$fakehash")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("alice", user.Username)
	req.Equal("$argon2id$fakehash", user.PasswordHash)
	req.Equal([]string{"user"}, user.Roles)
}

func Test_Create_Duplicate_Username_Rejected(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewUserRepository(db)

	_, err = repository.CreateUser("bob", "hash1")
	req.NoError(err)

	_, err = repository.CreateUser("bob", "hash2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Fetch_Unknown_User_Fails(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewUserRepository(db)

	_, err = repository.GetUserByUsername("nobody")
	req.Error(err)
}
