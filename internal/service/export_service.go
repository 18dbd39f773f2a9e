package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"inventory-api/internal/storage"
)

// ExportOptions configures where inventory snapshots are written.
type ExportOptions struct {
	Bucket    string
	KeyPrefix string
	// URLExpiry bounds the presigned download link. Defaults to 15 minutes.
	URLExpiry time.Duration
	Now       func() time.Time
}

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Location string
	URL      string
	Count    int
}

// ExportInfo describes a snapshot already in storage.
type ExportInfo struct {
	Key       string
	Size      int64
	CreatedAt *time.Time
}

// ExportService snapshots an owner's inventory into object storage.
type ExportService interface {
	Export(ctx context.Context, ownerID int64, backend string, items InventoryService) (*ExportResult, error)
	List(ctx context.Context, ownerID int64, backend string) ([]ExportInfo, error)
}

type exportService struct {
	store storage.Service
	opts  ExportOptions
}

func NewExportService(store storage.Service, opts ExportOptions) ExportService {
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	return &exportService{store: store, opts: opts}
}

type exportDocument struct {
	OwnerID    int64          `json:"owner_id"`
	Backend    string         `json:"backend"`
	ExportedAt time.Time      `json:"exported_at"`
	Items      []exportedItem `json:"items"`
}

type exportedItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *exportService) Export(ctx context.Context, ownerID int64, backend string, items InventoryService) (*ExportResult, error) {
	list, err := items.ListItems(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items for export: %w", err)
	}

	now := s.opts.Now().UTC()
	doc := exportDocument{
		OwnerID:    ownerID,
		Backend:    backend,
		ExportedAt: now,
		Items:      make([]exportedItem, len(list)),
	}
	for i, item := range list {
		doc.Items[i] = exportedItem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
			CreatedAt:   item.CreatedAt,
		}
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	// the suffix keeps exports made within the same millisecond apart
	name := fmt.Sprintf("%s-%d-%s.json", backend, now.UnixMilli(), uuid.NewString()[:8])
	key := path.Join(s.ownerPrefix(ownerID), name)
	location, err := s.store.PutObject(ctx, bytes.NewReader(body), storage.PutOptions{
		Bucket:      s.opts.Bucket,
		Key:         key,
		ContentType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}

	url, err := s.store.GetObjectURL(ctx, s.opts.Bucket, key, s.opts.URLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	return &ExportResult{Location: location, URL: url, Count: len(list)}, nil
}

func (s *exportService) List(ctx context.Context, ownerID int64, backend string) ([]ExportInfo, error) {
	prefix := path.Join(s.ownerPrefix(ownerID), backend+"-")
	objects, err := s.store.ListObjects(ctx, s.opts.Bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}

	exports := make([]ExportInfo, len(objects))
	for i, obj := range objects {
		exports[i] = ExportInfo{Key: obj.Key, Size: obj.Size, CreatedAt: obj.LastModified}
	}
	return exports, nil
}

func (s *exportService) ownerPrefix(ownerID int64) string {
	return path.Join(s.opts.KeyPrefix, fmt.Sprintf("user-%d", ownerID))
}
