package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

const itemColumns = `id, user_id, name, description, quantity, price, created_at`

// ItemRepository stores inventory items in the inventory_items table. Item ids
// are the decimal form of the row id.
type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) repository.ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (string, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, r.db.rebind(`
INSERT INTO inventory_items (user_id, name, description, quantity, price, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id`),
		item.OwnerID,
		item.Name,
		item.Description,
		item.Quantity,
		item.Price,
		item.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}

	item.ID = strconv.FormatInt(id, 10)
	return item.ID, nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
SELECT `+itemColumns+`
FROM inventory_items
WHERE user_id = ?
ORDER BY id ASC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

func (r *ItemRepository) Get(ctx context.Context, ownerID int64, itemID string) (*domain.Item, error) {
	id, ok := parseItemID(itemID)
	if !ok {
		return nil, fmt.Errorf("item %w", domain.ErrNotFound)
	}

	row := r.db.QueryRowContext(ctx, r.db.rebind(`
SELECT `+itemColumns+`
FROM inventory_items
WHERE id = ? AND user_id = ?`),
		id,
		ownerID,
	)
	return scanItem(row)
}

func (r *ItemRepository) Update(ctx context.Context, ownerID int64, itemID string, fields domain.ItemFields) (*domain.Item, error) {
	id, ok := parseItemID(itemID)
	if !ok {
		return nil, fmt.Errorf("item %w", domain.ErrNotFound)
	}

	// NULL keeps the stored column, so absent fields survive untouched.
	row := r.db.QueryRowContext(ctx, r.db.rebind(`
UPDATE inventory_items
SET name = COALESCE(?, name),
	description = COALESCE(?, description),
	quantity = COALESCE(?, quantity),
	price = COALESCE(?, price)
WHERE id = ? AND user_id = ?
RETURNING `+itemColumns),
		nullable(fields.Name),
		nullable(fields.Description),
		nullable(fields.Quantity),
		nullable(fields.Price),
		id,
		ownerID,
	)
	return scanItem(row)
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID int64, itemID string) error {
	id, ok := parseItemID(itemID)
	if !ok {
		return fmt.Errorf("item %w", domain.ErrNotFound)
	}

	res, err := r.db.ExecContext(ctx, r.db.rebind(`DELETE FROM inventory_items WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("item delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("item %w", domain.ErrNotFound)
	}
	return nil
}

func parseItemID(itemID string) (int64, bool) {
	id, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func scanItem(scanner interface {
	Scan(dest ...any) error
}) (*domain.Item, error) {
	var (
		item domain.Item
		id   int64
	)
	if err := scanner.Scan(
		&id,
		&item.OwnerID,
		&item.Name,
		&item.Description,
		&item.Quantity,
		&item.Price,
		timeValue{&item.CreatedAt},
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}

	item.ID = strconv.FormatInt(id, 10)
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}
