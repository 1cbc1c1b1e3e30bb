package domain

import "time"

// Session binds a live transport connection to a display name.
// A session exists only between a successful identify and the disconnect;
// DisplayName is set exactly once and never mutated.
type Session struct {
	ConnectionID string
	DisplayName  string
	ConnectedAt  time.Time
}
