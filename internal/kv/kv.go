// Package kv abstracts the key-value primitives the subscription store is
// built on: string values with TTLs plus unordered sets. Implementations
// must make each operation individually atomic; callers sequence them and
// accept relaxed cross-key consistency.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired
var ErrNotFound = errors.New("kv: key not found")

// ErrUnavailable wraps any failure of the backing service. Callers check it
// with errors.Is to distinguish outages from missing data.
var ErrUnavailable = errors.New("kv: store unavailable")

// Store is the minimal contract the subscription store needs
type Store interface {
	// Get returns the value at key, or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set writes value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes keys. Missing keys are a no-op.
	Del(ctx context.Context, keys ...string) error

	// Expire sets or refreshes the TTL on an existing key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// SAdd adds members to the set at key, creating it if absent
	SAdd(ctx context.Context, key string, members ...string) error

	// SRem removes members from the set at key. Absent members are a no-op.
	SRem(ctx context.Context, key string, members ...string) error

	// SMembers returns all members of the set at key, empty if absent
	SMembers(ctx context.Context, key string) ([]string, error)

	// SCard returns the cardinality of the set at key, zero if absent
	SCard(ctx context.Context, key string) (int64, error)
}
