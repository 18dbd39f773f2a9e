package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// DefaultIdleTimeout is how long a session survives without a request.
const DefaultIdleTimeout = 30 * time.Minute

// SessionOptions configures a SessionService.
type SessionOptions struct {
	// IdleTimeout defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration
	// Secret signs session tokens. Required.
	Secret []byte
	// Now defaults to time.Now.
	Now func() time.Time
}

// SessionService issues and resolves server-side sessions. The token handed
// to the client only names a session; the stored record decides whether it is
// still live.
type SessionService interface {
	// Start destroys the session named by previousToken, if any, and opens a
	// new one for userID.
	Start(ctx context.Context, previousToken string, userID int64) (string, error)
	// Current resolves token to its user and slides the idle deadline.
	Current(ctx context.Context, token string) (int64, error)
	// End destroys the session named by token. Unknown tokens are ignored.
	End(ctx context.Context, token string) error
	IdleTimeout() time.Duration
}

type sessionService struct {
	sessions repository.SessionRepository
	idle     time.Duration
	secret   []byte
	now      func() time.Time
}

func NewSessionService(sessions repository.SessionRepository, opts SessionOptions) (SessionService, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &sessionService{
		sessions: sessions,
		idle:     opts.IdleTimeout,
		secret:   opts.Secret,
		now:      opts.Now,
	}, nil
}

func (s *sessionService) IdleTimeout() time.Duration {
	return s.idle
}

func (s *sessionService) Start(ctx context.Context, previousToken string, userID int64) (string, error) {
	if previousID, ok := s.parse(previousToken); ok {
		if err := s.sessions.Delete(ctx, previousID); err != nil {
			return "", fmt.Errorf("drop previous session: %w", err)
		}
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.idle),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:       session.ID,
		IssuedAt: jwt.NewNumericDate(now),
	}).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *sessionService) Current(ctx context.Context, token string) (int64, error) {
	id, ok := s.parse(token)
	if !ok {
		return 0, ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, ErrUnauthenticated
		}
		return 0, fmt.Errorf("load session: %w", err)
	}

	now := s.now().UTC()
	if session.Expired(now) {
		if err := s.sessions.Delete(ctx, id); err != nil {
			return 0, fmt.Errorf("drop expired session: %w", err)
		}
		return 0, ErrUnauthenticated
	}

	if err := s.sessions.Touch(ctx, id, now, now.Add(s.idle)); err != nil {
		// logged out between Get and Touch
		if errors.Is(err, domain.ErrNotFound) {
			return 0, ErrUnauthenticated
		}
		return 0, fmt.Errorf("touch session: %w", err)
	}
	return session.UserID, nil
}

func (s *sessionService) End(ctx context.Context, token string) error {
	id, ok := s.parse(token)
	if !ok {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// parse verifies the token signature and returns the session id it names.
func (s *sessionService) parse(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}
