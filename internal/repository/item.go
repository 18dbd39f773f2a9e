package repository

import (
	"context"

	"inventory-api/internal/domain"
)

//go:generate mockgen -source=item.go -destination=mocks/item.go -package=mocks

// ItemRepository persists inventory items. Every method except Create is scoped
// by owner: an item that exists under another owner is reported as
// domain.ErrNotFound, exactly like one that does not exist at all. Both the
// relational and the document backend implement this contract.
type ItemRepository interface {
	// Create stores item, assigning item.ID, and returns the new id.
	Create(ctx context.Context, item *domain.Item) (string, error)
	// ListByOwner returns the owner's items in insertion order.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error)
	Get(ctx context.Context, ownerID int64, itemID string) (*domain.Item, error)
	// Update applies the non-nil fields and returns the stored result.
	Update(ctx context.Context, ownerID int64, itemID string, fields domain.ItemFields) (*domain.Item, error)
	Delete(ctx context.Context, ownerID int64, itemID string) error
}
