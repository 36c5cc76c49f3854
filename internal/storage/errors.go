package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to create a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyInitialized is returned when creating the singleton
	// config record a second time. Re-initialization is disallowed.
	ErrAlreadyInitialized = errors.New("platform already initialized")

	// ErrConflict is returned when an atomic block lost a write conflict
	// and may be retried by the caller.
	ErrConflict = errors.New("transaction conflict")
)
