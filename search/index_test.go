package search

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewIndex(writer, slog.Default())
}

func chatEvent(sender, content string) domain.ChatEvent {
	return domain.ChatEvent{
		ID:        uuid.New(),
		Kind:      domain.KindChat,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

func TestIndex_FindsIndexedMessages(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	ctx := context.Background()

	stored := chatEvent("alice", "the deployment failed again")
	req.NoError(index.Consume(ctx, stored))
	req.NoError(index.Consume(ctx, chatEvent("bob", "lunch anyone?")))

	results, err := index.Search(ctx, "deployment", 10)
	req.NoError(err)
	req.Len(results, 1)
	req.Equal(stored.ID.String(), results[0].ID)
	req.Equal("alice", results[0].Sender)
	req.Equal("the deployment failed again", results[0].Content)
}

func TestIndex_SkipsPresenceEvents(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	ctx := context.Background()

	req.NoError(index.Consume(ctx, domain.NewJoinEvent("alice")))
	req.NoError(index.Consume(ctx, domain.NewLeaveEvent("alice")))

	results, err := index.Search(ctx, domain.JoinedContent, 10)
	req.NoError(err)
	req.Empty(results)
}

func TestIndex_NoMatchReturnsEmpty(t *testing.T) {
	req := require.New(t)
	index := newTestIndex(t)
	ctx := context.Background()

	req.NoError(index.Consume(ctx, chatEvent("alice", "hello world")))

	results, err := index.Search(ctx, "nonexistent", 10)
	req.NoError(err)
	req.Empty(results)
}
