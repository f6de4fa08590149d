package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/anota-labs/anota-core/internal/core/ports/driven"
)

// Ensure Cache implements the driven port
var _ driven.Cache = (*Cache)(nil)

// DefaultTTL applies when a caller passes a non-positive TTL
const DefaultTTL = 15 * time.Minute

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is an in-process fallback for when Redis is not configured.
// Entries are evicted lazily on read.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache creates an empty in-memory cache
func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get retrieves a value and unmarshals it into dest.
// Returns false when the key does not exist or has expired.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value with the given TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	c.entries[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
