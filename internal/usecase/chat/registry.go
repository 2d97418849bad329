package chat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kailas-cloud/petsearch/internal/domain"
	"github.com/kailas-cloud/petsearch/internal/usecase/session"
)

// Session pairs a conversation context with its owning customer and a
// per-session lock. A turn holds the lock end to end, so within one session
// turns are strictly serialized while different sessions proceed in parallel.
type Session struct {
	ID         string
	CustomerID string

	mu  sync.Mutex
	ctx *session.Context
}

// Lock acquires the session's single-writer lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session's single-writer lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Context returns the session's conversation context. Callers must hold the
// session lock while reading or mutating it.
func (s *Session) Context() *session.Context { return s.ctx }

// Registry is the in-memory session table.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers a fresh session for the customer and returns it.
func (r *Registry) Create(customerID string) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		ctx:        session.NewContext(),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks a session up by ID.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete drops a session. Deleting an unknown ID is not an error.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
