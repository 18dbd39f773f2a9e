package relational

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/domain"
)

var userSeq atomic.Int64

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "inventory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db, goose.NopLogger()))
	return db
}

func createTestUser(t *testing.T, db *DB) int64 {
	t.Helper()
	n := userSeq.Add(1)
	id, err := NewUserRepository(db).Create(context.Background(), &domain.User{
		Username:     fmt.Sprintf("user-%d", n),
		Email:        fmt.Sprintf("user-%d@example.com", n),
		PasswordHash: "hash",
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	return id
}
