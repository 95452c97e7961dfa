package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablepos/internal/infrastructure/cache"
	"tablepos/internal/testutil"
)

func newTestCache(t *testing.T) *cache.RedisCache {
	client, err := cache.NewRedisClient(testutil.SetupTestRedis(t))
	require.NoError(t, err)

	c := cache.NewRedisCache(client, "test-"+uuid.NewString())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewRedisClient(t *testing.T) {
	client, err := cache.NewRedisClient("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", client.Options().Addr)

	client, err = cache.NewRedisClient("redis://cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	_, err = cache.NewRedisClient("")
	assert.Error(t, err)
}

func TestRedisCache_Key(t *testing.T) {
	client, err := cache.NewRedisClient("localhost:6379")
	require.NoError(t, err)

	c := cache.NewRedisCache(client, "tablepos:reports")
	assert.Equal(t, "tablepos:reports:daily:3:2026-10-17", c.Key("daily", "3", "2026-10-17"))
}

// Integration Tests

func TestRedisCache_SetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, c.Key("missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, c.Key("daily"), `{"count":2}`, time.Minute))

	val, ok, err := c.Get(ctx, c.Key("daily"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"count":2}`, val)
}

func TestRedisCache_Generation(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, c.BumpGeneration(ctx))
	require.NoError(t, c.BumpGeneration(ctx))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}
