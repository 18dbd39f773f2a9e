// Package repotest holds the behavioural contract shared by every
// repository.ItemRepository implementation. Backend packages run the suite
// against their own storage.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// ItemRepositorySuite verifies owner scoping, partial updates and delete
// semantics. Both hooks are required.
type ItemRepositorySuite struct {
	suite.Suite

	// NewRepository returns an empty repository; it is called before every test.
	NewRepository func(t *testing.T) repository.ItemRepository
	// NewOwner returns a user id items can be attached to. Called after NewRepository.
	NewOwner func(t *testing.T) int64
	// MissingID is a well-formed id no stored item will ever have.
	MissingID string

	ctx  context.Context
	repo repository.ItemRepository
}

func (s *ItemRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepository(s.T())
}

func (s *ItemRepositorySuite) create(owner int64, name string, quantity int, price float64) *domain.Item {
	item := &domain.Item{
		OwnerID:   owner,
		Name:      name,
		Quantity:  quantity,
		Price:     price,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	id, err := s.repo.Create(s.ctx, item)
	s.Require().NoError(err)
	s.Require().NotEmpty(id)
	s.Require().Equal(id, item.ID)
	return item
}

func (s *ItemRepositorySuite) TestCreateThenGetRoundTrips() {
	owner := s.NewOwner(s.T())
	item := &domain.Item{
		OwnerID:     owner,
		Name:        "Widget",
		Description: "blue",
		Quantity:    5,
		Price:       2.5,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	id, err := s.repo.Create(s.ctx, item)
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, owner, id)
	s.Require().NoError(err)
	s.Equal(id, got.ID)
	s.Equal(owner, got.OwnerID)
	s.Equal("Widget", got.Name)
	s.Equal("blue", got.Description)
	s.Equal(5, got.Quantity)
	s.Equal(2.5, got.Price)
	s.True(item.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", item.CreatedAt, got.CreatedAt)
}

func (s *ItemRepositorySuite) TestCreateAssignsDistinctIDs() {
	owner := s.NewOwner(s.T())
	first := s.create(owner, "a", 1, 1)
	second := s.create(owner, "b", 1, 1)
	s.NotEqual(first.ID, second.ID)
}

func (s *ItemRepositorySuite) TestListByOwner() {
	alice := s.NewOwner(s.T())
	bob := s.NewOwner(s.T())

	s.Run("returns an empty slice when the owner has nothing", func() {
		items, err := s.repo.ListByOwner(s.ctx, alice)
		s.Require().NoError(err)
		s.NotNil(items)
		s.Empty(items)
	})

	first := s.create(alice, "first", 1, 1)
	s.create(bob, "bob's", 1, 1)
	second := s.create(alice, "second", 2, 2)

	s.Run("returns only the owner's items in insertion order", func() {
		items, err := s.repo.ListByOwner(s.ctx, alice)
		s.Require().NoError(err)
		s.Require().Len(items, 2)
		s.Equal(first.ID, items[0].ID)
		s.Equal(second.ID, items[1].ID)
		for _, item := range items {
			s.Equal(alice, item.OwnerID)
		}
	})
}

func (s *ItemRepositorySuite) TestForeignItemsLookMissing() {
	alice := s.NewOwner(s.T())
	bob := s.NewOwner(s.T())
	item := s.create(alice, "Widget", 5, 2.5)

	_, err := s.repo.Get(s.ctx, bob, item.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	name := "stolen"
	_, err = s.repo.Update(s.ctx, bob, item.ID, domain.ItemFields{Name: &name})
	s.ErrorIs(err, domain.ErrNotFound)

	err = s.repo.Delete(s.ctx, bob, item.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	got, err := s.repo.Get(s.ctx, alice, item.ID)
	s.Require().NoError(err)
	s.Equal("Widget", got.Name)
}

func (s *ItemRepositorySuite) TestUpdateAppliesOnlyProvidedFields() {
	owner := s.NewOwner(s.T())
	item := s.create(owner, "Widget", 5, 2.5)

	quantity := 10
	updated, err := s.repo.Update(s.ctx, owner, item.ID, domain.ItemFields{Quantity: &quantity})
	s.Require().NoError(err)
	s.Equal(10, updated.Quantity)
	s.Equal("Widget", updated.Name)
	s.Equal("", updated.Description)
	s.Equal(2.5, updated.Price)

	got, err := s.repo.Get(s.ctx, owner, item.ID)
	s.Require().NoError(err)
	s.Equal(10, got.Quantity)
	s.Equal("Widget", got.Name)
	s.Equal(2.5, got.Price)
	s.True(item.CreatedAt.Equal(got.CreatedAt))
}

func (s *ItemRepositorySuite) TestUpdateEveryField() {
	owner := s.NewOwner(s.T())
	item := s.create(owner, "Widget", 5, 2.5)

	name, desc, quantity, price := "Gadget", "green", 7, 9.75
	updated, err := s.repo.Update(s.ctx, owner, item.ID, domain.ItemFields{
		Name:        &name,
		Description: &desc,
		Quantity:    &quantity,
		Price:       &price,
	})
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.Equal(desc, updated.Description)
	s.Equal(quantity, updated.Quantity)
	s.Equal(price, updated.Price)
	s.True(item.CreatedAt.Equal(updated.CreatedAt))
}

func (s *ItemRepositorySuite) TestUpdateWithNoFieldsReturnsItem() {
	owner := s.NewOwner(s.T())
	item := s.create(owner, "Widget", 5, 2.5)

	got, err := s.repo.Update(s.ctx, owner, item.ID, domain.ItemFields{})
	s.Require().NoError(err)
	s.Equal(item.ID, got.ID)
	s.Equal("Widget", got.Name)
}

func (s *ItemRepositorySuite) TestDeleteIsNotRepeatable() {
	owner := s.NewOwner(s.T())
	item := s.create(owner, "Widget", 5, 2.5)

	s.Require().NoError(s.repo.Delete(s.ctx, owner, item.ID))

	_, err := s.repo.Get(s.ctx, owner, item.ID)
	s.ErrorIs(err, domain.ErrNotFound)

	err = s.repo.Delete(s.ctx, owner, item.ID)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ItemRepositorySuite) TestUnknownAndMalformedIDs() {
	owner := s.NewOwner(s.T())
	s.create(owner, "Widget", 5, 2.5)
	quantity := 1

	for _, id := range []string{s.MissingID, "not-an-id", ""} {
		_, err := s.repo.Get(s.ctx, owner, id)
		s.ErrorIs(err, domain.ErrNotFound, "get %q", id)

		_, err = s.repo.Update(s.ctx, owner, id, domain.ItemFields{Quantity: &quantity})
		s.ErrorIs(err, domain.ErrNotFound, "update %q", id)

		err = s.repo.Delete(s.ctx, owner, id)
		s.ErrorIs(err, domain.ErrNotFound, "delete %q", id)
	}
}
