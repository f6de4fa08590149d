package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anota-labs/anota-core/internal/core/ports/driven"
)

// Ensure Cache implements the driven port
var _ driven.Cache = (*Cache)(nil)

// DefaultTTL applies when a caller passes a non-positive TTL
const DefaultTTL = 15 * time.Minute

// Cache is a Redis implementation of the Cache port.
// Values are stored as JSON. Backend failures degrade silently: reads
// become misses and writes become no-ops, with the failure logged, so a
// Redis outage never fails a caller.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

// Config holds Redis connection configuration
type Config struct {
	// URL is the connection string (redis://host:port/db)
	URL string

	// DialTimeout for the initial connection
	DialTimeout time.Duration

	// Logger receives backend failure diagnostics
	Logger *slog.Logger
}

// NewCache creates a Redis cache and verifies connectivity
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewCacheWithClient(client, cfg.Logger), nil
}

// NewCacheWithClient creates a cache around an existing client. Used in tests.
func NewCacheWithClient(client *redis.Client, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, logger: logger}
}

// Get retrieves a value and unmarshals it into dest.
// Returns false when the key does not exist or the backend is unreachable.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		c.logger.Warn("redis get failed, treating as miss", "key", key, "error", err)
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cached value failed to unmarshal, treating as miss", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// Set stores a value with the given TTL. A backend failure drops the write.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("redis set failed, dropping write", "key", key, "error", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error, and a
// backend failure is logged and dropped.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("redis delete failed", "key", key, "error", err)
	}
	return nil
}

// Close closes the underlying client
func (c *Cache) Close() error {
	return c.client.Close()
}
