package ws

import (
	"chat-relay/domain"
	"time"
)

const (
	frameTypeIdentify = "identify"
	frameTypeChat     = "chat"
	frameTypeError    = "error"
)

// InboundFrame is what clients send: an identify frame first, then chat
// frames. Client-supplied timestamps have no field here on purpose.
type InboundFrame struct {
	Type    string `json:"type"`
	Sender  string `json:"sender,omitempty"`
	Content string `json:"content,omitempty"`
}

// EventFrame is the broadcast payload, with the kind made explicit.
type EventFrame struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ErrorFrame reports a rejected signal to the offending connection alone.
type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func toEventFrame(e domain.ChatEvent) EventFrame {
	return EventFrame{
		ID:        e.ID.String(),
		Kind:      string(e.Kind),
		Sender:    e.Sender,
		Content:   e.Content,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	}
}

func newErrorFrame(err error) ErrorFrame {
	return ErrorFrame{Type: frameTypeError, Error: err.Error()}
}
