package service

import (
	"errors"
	"fmt"

	"inventory-api/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when a username or email is already registered.
	ErrUserAlreadyExists = fmt.Errorf("user already exists: %w", domain.ErrConflict)
	// ErrUsernameTaken narrows ErrUserAlreadyExists to the username.
	ErrUsernameTaken = fmt.Errorf("username taken: %w", ErrUserAlreadyExists)
	// ErrEmailTaken narrows ErrUserAlreadyExists to the email address.
	ErrEmailTaken = fmt.Errorf("email taken: %w", ErrUserAlreadyExists)
	// ErrUnauthenticated means the request carries no live session.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError reports user input that was rejected. Message is safe to
// show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
