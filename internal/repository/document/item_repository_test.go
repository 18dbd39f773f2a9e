package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOwnedFilter(t *testing.T) {
	oid := primitive.NewObjectID()

	filter, ok := ownedFilter(42, oid.Hex())
	assert.True(t, ok)
	assert.Equal(t, bson.M{"_id": oid, "user_id": int64(42)}, filter)

	for _, bad := range []string{"", "42", "not-an-object-id", oid.Hex() + "00"} {
		_, ok := ownedFilter(42, bad)
		assert.False(t, ok, bad)
	}
}

func TestDocumentToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := itemDocument{
		ID:          oid,
		UserID:      9,
		Name:        "Widget",
		Description: "blue",
		Quantity:    3,
		Price:       1.25,
		CreatedAt:   created,
	}

	item := doc.toDomain()
	assert.Equal(t, oid.Hex(), item.ID)
	assert.Equal(t, int64(9), item.OwnerID)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, created.Equal(item.CreatedAt))
}

func TestOpenRequiresDatabaseName(t *testing.T) {
	_, _, err := Open(context.Background(), "mongodb://localhost:27017", "")
	assert.Error(t, err)
}
