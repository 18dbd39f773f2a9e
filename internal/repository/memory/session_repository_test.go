package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
	"inventory-api/internal/repository/repotest"
)

func TestSessionRepositoryContract(t *testing.T) {
	suite.Run(t, &repotest.SessionRepositorySuite{
		NewRepository: func(*testing.T) repository.SessionRepository {
			return NewSessionRepository()
		},
	})
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	session := &domain.Session{ID: "abc", UserID: 1, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	got.UserID = 99

	again, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.UserID)
}

func TestConcurrentAccess(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := uuid.NewString()
			now := time.Now()
			assert.NoError(t, repo.Create(ctx, &domain.Session{ID: id, UserID: int64(i), ExpiresAt: now.Add(time.Minute)}))
			assert.NoError(t, repo.Touch(ctx, id, now, now.Add(2*time.Minute)))
			_, err := repo.Get(ctx, id)
			assert.NoError(t, err)
			if i%2 == 0 {
				assert.NoError(t, repo.Delete(ctx, id))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, repo.Len())
}

func TestCreateSweepsExpiredSessions(t *testing.T) {
	repo := NewSessionRepository()
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "stale", UserID: 1, CreatedAt: start, ExpiresAt: start.Add(30 * time.Minute)}))
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "live", UserID: 2, CreatedAt: start.Add(20 * time.Minute), ExpiresAt: start.Add(50 * time.Minute)}))
	assert.Equal(t, 2, repo.Len())

	later := start.Add(40 * time.Minute)
	require.NoError(t, repo.Create(ctx, &domain.Session{ID: "new", UserID: 3, CreatedAt: later, ExpiresAt: later.Add(30 * time.Minute)}))

	assert.Equal(t, 2, repo.Len())
	_, err := repo.Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.Get(ctx, "live")
	assert.NoError(t, err)
}
