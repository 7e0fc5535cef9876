package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborline/bms/internal/auth/cache"
	"github.com/harborline/bms/internal/auth/cache/memory"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := memory.New()

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

func TestMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := memory.New()

	require.NoError(t, c.Set(ctx, "k", "old", time.Minute))
	require.NoError(t, c.Set(ctx, "k", "new", time.Minute))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "new", v)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := memory.New()

	require.NoError(t, c.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrMiss)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}
