//go:build integration

package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsdesk/pkg/cache"
	"github.com/dmitrymomot/newsdesk/pkg/redis"
)

type cachedPost struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	ctx := context.Background()
	client, err := redis.OpenURL(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewRedis[cachedPost](client, nil, cache.WithPrefix("test-posts"))
	t.Cleanup(func() { _ = c.Delete(ctx, "alps", "never") })

	_, err = c.Get(ctx, "alps")
	require.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, c.Set(ctx, "alps", cachedPost{Slug: "alps", Title: "Alps"}, time.Minute))
	got, err := c.Get(ctx, "alps")
	require.NoError(t, err)
	assert.Equal(t, "Alps", got.Title)

	ttl, err := client.TTL(ctx, "test-posts:alps").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, c.Set(ctx, "never", cachedPost{}, -1))
	ttl, err = client.TTL(ctx, "test-posts:never").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, c.Delete(ctx, "alps"))
	_, err = c.Get(ctx, "alps")
	assert.ErrorIs(t, err, cache.ErrNotFound)
}
