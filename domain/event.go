// Package domain contains core concepts of the relay.
// This file defines ChatEvent and its kinds.
// Events are immutable; identifiers and timestamps are always assigned
// server-side and client-supplied values are discarded.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	KindChat  EventKind = "CHAT"
	KindJoin  EventKind = "JOIN"
	KindLeave EventKind = "LEAVE"
)

// Presence payloads are fixed literals.
const (
	JoinedContent = "joined!"
	LeftContent   = "left!"
)

// ChatEvent is a single immutable relay event: a user-authored message or
// a synthesized presence notification.
type ChatEvent struct {
	ID        uuid.UUID
	Kind      EventKind
	Sender    string
	Content   string
	Timestamp time.Time
}

// NewJoinEvent builds the presence event announcing a display name.
// Presence events are broadcast-only and never persisted.
func NewJoinEvent(sender string) ChatEvent {
	return ChatEvent{
		ID:        uuid.New(),
		Kind:      KindJoin,
		Sender:    sender,
		Content:   JoinedContent,
		Timestamp: time.Now().UTC(),
	}
}

// NewLeaveEvent builds the presence event announcing a departure.
func NewLeaveEvent(sender string) ChatEvent {
	return ChatEvent{
		ID:        uuid.New(),
		Kind:      KindLeave,
		Sender:    sender,
		Content:   LeftContent,
		Timestamp: time.Now().UTC(),
	}
}
