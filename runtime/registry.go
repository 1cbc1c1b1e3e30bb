// Package runtime handles session tracking, event propagation, and the
// relay pipeline. It orchestrates the system without containing business
// logic or domain rules.
package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"sync"
	"time"
)

// Registry maps live connection identifiers to their sessions. The lock is
// held only for the map mutation itself, never across storage or delivery
// calls.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	order    []string // connect order, for presence listings
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]domain.Session)}
}

// Register creates the session for a connection on its first identify.
// First identify wins: a second identify on the same connection fails with
// ErrDuplicateSession and leaves the existing record untouched.
func (r *Registry) Register(connectionID, displayName string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connectionID]; ok {
		return domain.Session{}, errors.ErrDuplicateSession
	}
	session := domain.Session{
		ConnectionID: connectionID,
		DisplayName:  displayName,
		ConnectedAt:  time.Now().UTC(),
	}
	r.sessions[connectionID] = session
	r.order = append(r.order, connectionID)
	return session, nil
}

func (r *Registry) Lookup(connectionID string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return domain.Session{}, errors.ErrSessionNotFound
	}
	return session, nil
}

// Remove deletes and returns the session, so the caller can recover the
// display name for the synthesized LEAVE event. Removing an unknown
// connection fails with ErrSessionNotFound, which makes the disconnect
// path naturally idempotent.
func (r *Registry) Remove(connectionID string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connectionID]
	if !ok {
		return domain.Session{}, errors.ErrSessionNotFound
	}
	delete(r.sessions, connectionID)
	for i, id := range r.order {
		if id == connectionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return session, nil
}

// Snapshot returns the current sessions in connect order.
func (r *Registry) Snapshot() []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]domain.Session, 0, len(r.sessions))
	for _, id := range r.order {
		if session, ok := r.sessions[id]; ok {
			snapshot = append(snapshot, session)
		}
	}
	return snapshot
}
