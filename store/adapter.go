package store

import (
	"context"
	"encoding/json"
)

// Adapter defines the interface for persistence backends.
// Implementations must be thread-safe.
type Adapter interface {
	// Get retrieves a value by key. Returns nil, false, nil if not found.
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)

	// Set stores a value by key. Setting an existing key keeps its position.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Delete removes a key. No error if key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys, oldest first.
	Keys(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
