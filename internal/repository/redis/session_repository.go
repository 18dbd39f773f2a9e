package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

const keyPrefix = "session:"

// SessionRepository stores each session as a JSON value whose TTL tracks the
// session's idle deadline, so Redis evicts abandoned sessions on its own.
type SessionRepository struct {
	client *redis.Client
	now    func() time.Time
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client, now: time.Now}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, key(session.ID), data, r.ttl(session.ExpiresAt)).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s: %w", session.ID, domain.ErrConflict)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("session %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) Touch(ctx context.Context, id string, lastSeenAt, expiresAt time.Time) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.LastSeenAt = lastSeenAt
	session.ExpiresAt = expiresAt

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// XX: a logout that lands between Get and Set must win.
	err = r.client.SetArgs(ctx, key(id), data, redis.SetArgs{
		Mode: "XX",
		TTL:  r.ttl(expiresAt),
	}).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session %w", domain.ErrNotFound)
		}
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) ttl(expiresAt time.Time) time.Duration {
	ttl := expiresAt.Sub(r.now())
	if ttl < time.Second {
		// redis rejects non-positive expirations
		ttl = time.Second
	}
	return ttl
}

func key(id string) string {
	return keyPrefix + id
}
