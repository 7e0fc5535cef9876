// Package cache defines the short-lived key/value storage used for one-time
// passcodes and the access-token blacklist. Entries always carry a TTL;
// nothing in here is durable and a restart losing the contents is acceptable
// (outstanding OTPs are reissued, blacklisted tokens die with the signing
// keys).
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent or its TTL has elapsed.
var ErrMiss = errors.New("cache: miss")

// Cache is implemented by the in-process driver (single instance deploys)
// and the redis driver (multi-instance deploys).
type Cache interface {
	// Set stores a value under key for ttl. An existing entry under the
	// same key is overwritten and its TTL reset.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value for key, or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases any underlying resources.
	Close() error
}
