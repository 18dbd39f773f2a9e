package domain

import "time"

// User represents a registered account that owns inventory items.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
