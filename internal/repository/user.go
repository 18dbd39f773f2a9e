package repository

import (
	"context"

	"inventory-api/internal/domain"
)

//go:generate mockgen -source=user.go -destination=mocks/user.go -package=mocks

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	// Create stores the user and returns its id. Duplicate usernames or emails
	// yield domain.ErrConflict.
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
