package domain

import "errors"

// Storage-level facts. Repositories return these (usually wrapped) and the
// service layer decides what they mean to a caller.
var (
	// ErrNotFound means no record matched, including records owned by somebody else.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")
)
