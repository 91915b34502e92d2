package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a sample does not exist.
	ErrNotFound = errors.New("sample not found")

	// ErrConflict is returned when a sample with the given ID already exists.
	ErrConflict = errors.New("sample already exists")
)
