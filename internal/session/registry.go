// Package session tracks which identities currently hold a live connection.
package session

import (
	"errors"
	"sync"
)

// ErrAlreadyConnected is returned when the identity already holds a connection.
var ErrAlreadyConnected = errors.New("identity already connected")

// Registry maps identity to the connection that holds it.
// At most one connection holds a given identity at any time.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]string // identity -> connection id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]string),
	}
}

// Admit records that connID holds identity. It fails if any connection,
// including connID itself, already holds the identity.
func (r *Registry) Admit(identity, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[identity]; exists {
		return ErrAlreadyConnected
	}
	r.sessions[identity] = connID
	return nil
}

// Release removes the entry for identity if connID holds it. Releasing an
// absent identity, or one held by another connection, is a no-op.
func (r *Registry) Release(identity, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if holder, exists := r.sessions[identity]; exists && holder == connID {
		delete(r.sessions, identity)
	}
}

// Connected reports whether identity currently holds a connection.
func (r *Registry) Connected(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.sessions[identity]
	return exists
}

// Count returns the number of connected identities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
