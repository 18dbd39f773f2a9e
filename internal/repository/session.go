package repository

import (
	"context"
	"time"

	"inventory-api/internal/domain"
)

//go:generate mockgen -source=session.go -destination=mocks/session.go -package=mocks

// SessionRepository stores server-side login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Touch moves the session's activity window. It never recreates a session
	// that was deleted concurrently; that case is domain.ErrNotFound.
	Touch(ctx context.Context, id string, lastSeenAt, expiresAt time.Time) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}
