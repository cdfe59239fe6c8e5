package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails: a missing
	// user id, or a row missing required fields. The store is not mutated.
	ErrInvalidInput = errors.New("invalid input")
)
