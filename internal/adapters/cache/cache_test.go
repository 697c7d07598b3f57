package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athebyme/shopify-product-service/internal/utils"
	"github.com/athebyme/shopify-product-service/pkg/interfaces"
)

func newRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)

	c, err := NewRedisCache(context.Background(), RedisOptions{
		Host:        srv.Host(),
		Port:        port,
		PoolSize:    2,
		DialTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, srv
}

func exerciseCachePort(t *testing.T, c interfaces.CachePort) {
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, utils.ErrCacheMiss)

	for want := int64(1); want <= 3; want++ {
		n, err := c.Increment(ctx, "counter", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestRedisCachePort(t *testing.T) {
	c, _ := newRedis(t)
	exerciseCachePort(t, c)
}

func TestMemoryCachePort(t *testing.T) {
	exerciseCachePort(t, NewMemoryCache(time.Minute))
}

func TestRedisIncrementSetsExpiryOnce(t *testing.T) {
	c, srv := newRedis(t)
	ctx := context.Background()

	_, err := c.Increment(ctx, "rl:shop", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, srv.TTL(keyPrefix+"rl:shop"))

	srv.FastForward(40 * time.Second)
	_, err = c.Increment(ctx, "rl:shop", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, srv.TTL(keyPrefix+"rl:shop"))

	srv.FastForward(21 * time.Second)
	n, err := c.Increment(ctx, "rl:shop", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisIncrementFailureLeavesNoCounter(t *testing.T) {
	c, srv := newRedis(t)
	ctx := context.Background()

	srv.SetError("ERR server unavailable")
	_, err := c.Increment(ctx, "rl:down", 1, time.Minute)
	require.Error(t, err)
	srv.SetError("")

	assert.False(t, srv.Exists(keyPrefix+"rl:down"))

	n, err := c.Increment(ctx, "rl:down", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, srv.TTL(keyPrefix+"rl:down"))
}

func TestMemoryIncrementExpires(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, err := c.Increment(ctx, "rl:shop", 1, 20*time.Millisecond)
	require.NoError(t, err)
	n, err := c.Increment(ctx, "rl:shop", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	time.Sleep(40 * time.Millisecond)
	n, err = c.Increment(ctx, "rl:shop", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewRedisCacheFailsWhenUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	port, err := strconv.Atoi(srv.Port())
	require.NoError(t, err)
	host := srv.Host()
	srv.Close()

	_, err = NewRedisCache(context.Background(), RedisOptions{Host: host, Port: port, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}
