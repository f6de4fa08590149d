package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k1", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	found, err := cache.Get(ctx, "k1", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, got["a"])
}

func TestCacheMissing(t *testing.T) {
	cache := NewCache()

	var got string
	found, err := cache.Get(context.Background(), "nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var got string
	found, err := cache.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired key should read as missing")
}

func TestCacheDelete(t *testing.T) {
	cache := NewCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	var got string
	found, _ := cache.Get(ctx, "k", &got)
	assert.False(t, found)

	// Deleting a missing key is a no-op
	assert.NoError(t, cache.Delete(ctx, "k"))
}
