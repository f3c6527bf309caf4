// Package kv implements the key/value store all collections live in. Every
// logical collection (medications, records, delays, settings) and every
// backup snapshot is one value under one key, read and written whole, which
// preserves the load-full-collection/save-full-collection contract of the
// storage layer.
package kv

import "context"

// Repository describes the operations of the key/value store.
// Implementations are backed by a local SQLite database.
type Repository interface {
	// Get returns the value stored under key, or common.ErrNotFound when the
	// key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
