package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// SessionRepositorySuite verifies the behaviour the session service relies on
// from every repository.SessionRepository.
type SessionRepositorySuite struct {
	suite.Suite

	// NewRepository returns an empty repository; it is called before every test.
	NewRepository func(t *testing.T) repository.SessionRepository

	ctx  context.Context
	repo repository.SessionRepository
}

func (s *SessionRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepository(s.T())
}

func (s *SessionRepositorySuite) newSession(userID int64) *domain.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(30 * time.Minute),
	}
}

func (s *SessionRepositorySuite) TestCreateThenGet() {
	session := s.newSession(7)
	s.Require().NoError(s.repo.Create(s.ctx, session))

	got, err := s.repo.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.ID, got.ID)
	s.Equal(int64(7), got.UserID)
	s.True(session.CreatedAt.Equal(got.CreatedAt))
	s.True(session.ExpiresAt.Equal(got.ExpiresAt))
}

func (s *SessionRepositorySuite) TestCreateRejectsDuplicateID() {
	session := s.newSession(1)
	s.Require().NoError(s.repo.Create(s.ctx, session))

	again := *session
	again.UserID = 2
	s.ErrorIs(s.repo.Create(s.ctx, &again), domain.ErrConflict)

	got, err := s.repo.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), got.UserID)
}

func (s *SessionRepositorySuite) TestGetUnknown() {
	_, err := s.repo.Get(s.ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *SessionRepositorySuite) TestTouchMovesDeadline() {
	session := s.newSession(3)
	s.Require().NoError(s.repo.Create(s.ctx, session))

	seen := session.LastSeenAt.Add(10 * time.Minute)
	expires := seen.Add(30 * time.Minute)
	s.Require().NoError(s.repo.Touch(s.ctx, session.ID, seen, expires))

	got, err := s.repo.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(seen.Equal(got.LastSeenAt))
	s.True(expires.Equal(got.ExpiresAt))
	s.True(session.CreatedAt.Equal(got.CreatedAt))
	s.Equal(int64(3), got.UserID)
}

func (s *SessionRepositorySuite) TestTouchDoesNotResurrect() {
	session := s.newSession(3)
	s.Require().NoError(s.repo.Create(s.ctx, session))
	s.Require().NoError(s.repo.Delete(s.ctx, session.ID))

	err := s.repo.Touch(s.ctx, session.ID, time.Now(), time.Now().Add(time.Hour))
	s.ErrorIs(err, domain.ErrNotFound)

	_, err = s.repo.Get(s.ctx, session.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *SessionRepositorySuite) TestDeleteIsIdempotent() {
	session := s.newSession(4)
	s.Require().NoError(s.repo.Create(s.ctx, session))

	s.NoError(s.repo.Delete(s.ctx, session.ID))
	s.NoError(s.repo.Delete(s.ctx, session.ID))
	s.NoError(s.repo.Delete(s.ctx, uuid.NewString()))
}

func (s *SessionRepositorySuite) TestSessionsAreIndependent() {
	a := s.newSession(1)
	b := s.newSession(1)
	s.Require().NoError(s.repo.Create(s.ctx, a))
	s.Require().NoError(s.repo.Create(s.ctx, b))

	s.Require().NoError(s.repo.Delete(s.ctx, a.ID))

	_, err := s.repo.Get(s.ctx, a.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	_, err = s.repo.Get(s.ctx, b.ID)
	s.NoError(err)
}
