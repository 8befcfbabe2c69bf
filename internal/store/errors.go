package store

import "errors"

var (
	// ErrDuplicateEmail is returned when a write would violate the unique
	// email index, including a lost race between two concurrent signups.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("not found")
)
