package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent or its TTL has lapsed.
var ErrKeyNotFound = errors.New("key not found")

// ErrUnavailable wraps transport-level store failures (connection refused,
// timeouts). Callers match it with errors.Is to map to a 503.
var ErrUnavailable = errors.New("store unavailable")

// KV is the key-value store contract shared by the shortening engine and the
// rate limiter. All mutable state lives behind this interface; correctness
// under concurrent requests relies on the store's per-key atomicity.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// SetWithExpiry writes key unconditionally with the given TTL.
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// SetIfAbsent writes key only if it does not already exist, returning
	// true when this caller performed the write. Used to close the
	// check-then-act race on the reverse URL mapping.
	SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Expire resets the TTL on an existing key. Returns false if the key
	// is absent.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Incr atomically increments key, creating it at 1. The TTL is set
	// when the key is created so a counter can never outlive its window.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
