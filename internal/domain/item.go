package domain

import "time"

// Item is a single inventory record. It belongs to exactly one user.
type Item struct {
	ID          string
	OwnerID     int64
	Name        string
	Description string
	Quantity    int
	Price       float64
	CreatedAt   time.Time
}

// ItemFields carries the user-supplied item attributes. Nil means "not provided":
// on create the required ones must be set, on update only the set ones are applied.
type ItemFields struct {
	Name        *string
	Description *string
	Quantity    *int
	Price       *float64
}

// Apply copies every provided field onto item.
func (f ItemFields) Apply(item *Item) {
	if f.Name != nil {
		item.Name = *f.Name
	}
	if f.Description != nil {
		item.Description = *f.Description
	}
	if f.Quantity != nil {
		item.Quantity = *f.Quantity
	}
	if f.Price != nil {
		item.Price = *f.Price
	}
}

// Empty reports whether no field was provided.
func (f ItemFields) Empty() bool {
	return f.Name == nil && f.Description == nil && f.Quantity == nil && f.Price == nil
}
