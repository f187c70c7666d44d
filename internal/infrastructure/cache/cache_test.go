package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("payload")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload", string(got))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "forever", []byte("2"), 0))

	now = now.Add(2 * time.Second)
	_, ok, _ := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	for _, k := range []string{"universities:/a", "universities:/b", "offers:/a"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), time.Minute))
	}

	require.NoError(t, c.DeletePrefix(ctx, "universities:"))

	_, ok, _ := c.Get(ctx, "universities:/a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "offers:/a")
	assert.True(t, ok)
}

// Runs only when a Redis instance is provided, e.g. REDIS_TEST_URL=redis://localhost:6379/15
func TestRedisCache(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisCache(client, "travel-test:")
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.DeletePrefix(ctx, ""))

	require.NoError(t, c.Set(ctx, "offers:/list", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "deals:/list", []byte("y"), time.Minute))

	got, ok, err := c.Get(ctx, "offers:/list")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", string(got))

	require.NoError(t, c.DeletePrefix(ctx, "offers:"))
	_, ok, err = c.Get(ctx, "offers:/list")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "deals:/list")
	assert.True(t, ok)
}
