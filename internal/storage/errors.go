package storage

import "errors"

// Storage errors for the in-process stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyFinalized is returned when a trade already reached a terminal state.
	ErrAlreadyFinalized = errors.New("trade already finalized")
)
