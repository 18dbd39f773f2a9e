package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// CollectionName is where inventory documents live.
const CollectionName = "inventory"

type itemDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      int64              `bson:"user_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Quantity    int                `bson:"quantity"`
	Price       float64            `bson:"price"`
	CreatedAt   time.Time          `bson:"created_at"`
}

// ItemRepository stores inventory items as documents. Item ids are ObjectID hex strings.
type ItemRepository struct {
	coll *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{coll: db.Collection(CollectionName)}
}

var _ repository.ItemRepository = (*ItemRepository)(nil)

// Init creates the owner index every query filters on.
func (r *ItemRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create inventory index: %w", err)
	}
	return nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (string, error) {
	doc := itemDocument{
		ID:          primitive.NewObjectID(),
		UserID:      item.OwnerID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price,
		CreatedAt:   item.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}

	item.ID = doc.ID.Hex()
	return item.ID, nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Item, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"user_id": ownerID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]domain.Item, 0)
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		items = append(items, doc.toDomain())
	}

	return items, cursor.Err()
}

func (r *ItemRepository) Get(ctx context.Context, ownerID int64, itemID string) (*domain.Item, error) {
	filter, ok := ownedFilter(ownerID, itemID)
	if !ok {
		return nil, fmt.Errorf("item %w", domain.ErrNotFound)
	}

	var doc itemDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapFindErr(err)
	}
	item := doc.toDomain()
	return &item, nil
}

func (r *ItemRepository) Update(ctx context.Context, ownerID int64, itemID string, fields domain.ItemFields) (*domain.Item, error) {
	filter, ok := ownedFilter(ownerID, itemID)
	if !ok {
		return nil, fmt.Errorf("item %w", domain.ErrNotFound)
	}

	set := bson.M{}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Quantity != nil {
		set["quantity"] = *fields.Quantity
	}
	if fields.Price != nil {
		set["price"] = *fields.Price
	}
	if len(set) == 0 {
		// an empty $set is rejected by the server
		return r.Get(ctx, ownerID, itemID)
	}

	var doc itemDocument
	err := r.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapFindErr(err)
	}
	item := doc.toDomain()
	return &item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID int64, itemID string) error {
	filter, ok := ownedFilter(ownerID, itemID)
	if !ok {
		return fmt.Errorf("item %w", domain.ErrNotFound)
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("item %w", domain.ErrNotFound)
	}
	return nil
}

func ownedFilter(ownerID int64, itemID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": ownerID}, true
}

func mapFindErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("item %w", domain.ErrNotFound)
	}
	return fmt.Errorf("find item: %w", err)
}

func (d itemDocument) toDomain() domain.Item {
	return domain.Item{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID,
		Name:        d.Name,
		Description: d.Description,
		Quantity:    d.Quantity,
		Price:       d.Price,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}
