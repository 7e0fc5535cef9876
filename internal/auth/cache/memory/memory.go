// Package memory is the in-process cache driver, backed by
// patrickmn/go-cache. Suitable for single-instance deployments; entries are
// janitored out automatically after their TTL.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/harborline/bms/internal/auth/cache"
)

type Cache struct {
	c *gocache.Cache
}

// New creates an in-process cache. Expired entries are swept every minute.
func New() *Cache {
	return &Cache{
		c: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (m *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.c.Set(key, value, ttl)
	return nil
}

func (m *Cache) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", cache.ErrMiss
	}
	return v.(string), nil
}

func (m *Cache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *Cache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.c.Get(key)
	return ok, nil
}

func (m *Cache) Close() error { return nil }
