// Package common defines shared sentinel errors used across the storage,
// scheduling and CLI layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors: a write was rejected before touching storage.
	ErrValidation = errors.New("validation failed")

	// Storage-level errors (read/write against the underlying store).
	ErrStorage = errors.New("storage error")

	// Import/restore errors: the envelope as a whole was rejected.
	ErrInvalidImport = errors.New("invalid import data")
)
