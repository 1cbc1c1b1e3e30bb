// Package search maintains a full-text index over the persisted chat
// transcript and answers content queries against it.
package search

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blugelabs/bluge"
)

// Index consumes broadcast events as a permanent hub observer and indexes
// the chat ones into Bluge. Presence events are skipped: they are
// ephemeral by design and never part of the searchable transcript.
type Index struct {
	mu     sync.Mutex
	writer *bluge.Writer
	log    *slog.Logger
}

func NewIndex(writer *bluge.Writer, log *slog.Logger) *Index {
	return &Index{writer: writer, log: log}
}

func (i *Index) Consume(_ context.Context, e domain.ChatEvent) error {
	if e.Kind != domain.KindChat {
		return nil
	}

	doc := bluge.NewDocument(e.ID.String()).
		AddField(bluge.NewTextField("sender", e.Sender).StoreValue()).
		AddField(bluge.NewTextField("content", e.Content).StoreValue()).
		AddField(bluge.NewDateTimeField("at", e.Timestamp).StoreValue())

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Update(doc.ID(), doc)
}

// Result is one search hit, rebuilt from stored fields.
type Result struct {
	ID      string    `json:"id"`
	Sender  string    `json:"sender"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Search runs a match query on message content and returns the top hits.
func (i *Index) Search(ctx context.Context, terms string, limit int) ([]Result, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewMatchQuery(terms).SetField("content")
	request := bluge.NewTopNSearch(limit, query)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var results []Result
	next, err := iterator.Next()
	for err == nil && next != nil {
		var result Result
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				result.ID = string(value)
			case "sender":
				result.Sender = string(value)
			case "content":
				result.Content = string(value)
			case "at":
				if at, decodeErr := bluge.DecodeDateTime(value); decodeErr == nil {
					result.At = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		results = append(results, result)
		next, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}
