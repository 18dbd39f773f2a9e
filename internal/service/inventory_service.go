package service

import (
	"context"
	"strings"
	"time"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// InventoryService validates item input and forwards owner-scoped calls to a
// single ItemRepository.
type InventoryService interface {
	CreateItem(ctx context.Context, ownerID int64, fields domain.ItemFields) (*domain.Item, error)
	ListItems(ctx context.Context, ownerID int64) ([]domain.Item, error)
	GetItem(ctx context.Context, ownerID int64, itemID string) (*domain.Item, error)
	UpdateItem(ctx context.Context, ownerID int64, itemID string, fields domain.ItemFields) (*domain.Item, error)
	DeleteItem(ctx context.Context, ownerID int64, itemID string) error
}

type inventoryService struct {
	items repository.ItemRepository
	now   func() time.Time
}

func NewInventoryService(items repository.ItemRepository) InventoryService {
	return &inventoryService{items: items, now: time.Now}
}

func (s *inventoryService) CreateItem(ctx context.Context, ownerID int64, fields domain.ItemFields) (*domain.Item, error) {
	if fields.Name == nil || fields.Quantity == nil || fields.Price == nil {
		return nil, invalid("Missing required fields")
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	item := &domain.Item{
		OwnerID:   ownerID,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	fields.Apply(item)

	if _, err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	return s.items.ListByOwner(ctx, ownerID)
}

func (s *inventoryService) GetItem(ctx context.Context, ownerID int64, itemID string) (*domain.Item, error) {
	return s.items.Get(ctx, ownerID, itemID)
}

func (s *inventoryService) UpdateItem(ctx context.Context, ownerID int64, itemID string, fields domain.ItemFields) (*domain.Item, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	return s.items.Update(ctx, ownerID, itemID, fields)
}

func (s *inventoryService) DeleteItem(ctx context.Context, ownerID int64, itemID string) error {
	return s.items.Delete(ctx, ownerID, itemID)
}

func validateFields(fields domain.ItemFields) error {
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return invalid("Name must not be empty")
	}
	if fields.Quantity != nil && *fields.Quantity < 0 {
		return invalid("Quantity must not be negative")
	}
	if fields.Price != nil && *fields.Price < 0 {
		return invalid("Price must not be negative")
	}
	return nil
}
