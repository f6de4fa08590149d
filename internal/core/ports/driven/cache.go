package driven

import (
	"context"
	"time"
)

// Cache is a generic cache-aside store (Redis in production, in-memory as
// fallback). Implementations degrade silently: a backend outage reads as a
// miss and writes are dropped, so callers never fail because the cache is
// down.
type Cache interface {
	// Get retrieves the JSON value for a key and unmarshals it into dest.
	// Returns (false, nil) on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set marshals value to JSON and stores it with the given TTL.
	// A zero TTL uses the implementation default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
