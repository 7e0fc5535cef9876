package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/cache"
	"github.com/harborline/bms/internal/auth/cache/redis"
)

func newTestCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := redis.New(context.Background(), mr.Addr(), "", 0, "bms")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", v)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	// miniredis expires keys on FastForward rather than in real time
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)
}

func TestRedisCache_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.True(t, mr.Exists("bms:k"), "keys are namespaced under the prefix")
}

func TestRedisCache_ConnectFailure(t *testing.T) {
	_, err := redis.New(context.Background(), "127.0.0.1:1", "", 0, "bms")
	require.Error(t, err)
}
