package cache

import (
	"context"
	"time"
)

// Cache is the contract for the shared cache layer.
// Implementations: Redis (internal/infrastructure/cache), in-memory fakes in tests.
type Cache interface {
	// Get loads the value stored under key into dest.
	// Returns (found, error): found=false is a cache miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping checks the connection.
	Ping(ctx context.Context) error
}
