package projection

import (
	"chat-relay/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimeline_KeepsBroadcastOrder(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(10)

	join := domain.NewJoinEvent("alice")
	leave := domain.NewLeaveEvent("alice")
	req.NoError(timeline.Consume(context.Background(), join))
	req.NoError(timeline.Consume(context.Background(), leave))

	recent := timeline.Recent()
	req.Len(recent, 2)
	req.Equal(join.ID, recent[0].ID)
	req.Equal(leave.ID, recent[1].ID)
}

func TestTimeline_TrimsToLimit(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(3)

	var last domain.ChatEvent
	for i := 0; i < 10; i++ {
		last = domain.NewJoinEvent("user")
		req.NoError(timeline.Consume(context.Background(), last))
	}

	recent := timeline.Recent()
	req.Len(recent, 3)
	req.Equal(last.ID, recent[2].ID)
}

func TestTimeline_RecentReturnsCopy(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(10)

	req.NoError(timeline.Consume(context.Background(), domain.NewJoinEvent("alice")))

	first := timeline.Recent()
	first[0].Sender = "tampered"

	req.Equal("alice", timeline.Recent()[0].Sender)
}
