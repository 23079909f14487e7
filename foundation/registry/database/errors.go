package database

import "errors"

// Set of error variables for the block store. Callers test for them with
// errors.Is since they are always returned wrapped with context.
var (
	// ErrInvalidInput is returned when a field of a submission is
	// structurally invalid. The caller must correct it and retry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateID is returned when the block id is already committed.
	// It is not retryable with the same id.
	ErrDuplicateID = errors.New("duplicate block id")

	// ErrNotFound is returned when a key has no value in the store.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported is returned when an operation needs a slot the active
	// layout does not declare.
	ErrUnsupported = errors.New("not supported by the active version")
)
