package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// SessionRepository keeps sessions in process memory. Sessions do not survive
// a restart and are not shared between instances. Create sweeps out sessions
// that had already expired when the new one was opened, so abandoned sessions
// do not pile up.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrConflict)
	}
	if !session.CreatedAt.IsZero() {
		r.sweep(session.CreatedAt)
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %w", domain.ErrNotFound)
	}
	return &session, nil
}

func (r *SessionRepository) Touch(_ context.Context, id string, lastSeenAt, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %w", domain.ErrNotFound)
	}
	session.LastSeenAt = lastSeenAt
	session.ExpiresAt = expiresAt
	r.sessions[id] = session
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// sweep drops every session expired at now. Callers hold the write lock.
func (r *SessionRepository) sweep(now time.Time) {
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
		}
	}
}

// Len reports how many sessions are held.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
