// Package redis is the shared cache driver for multi-instance deployments,
// backed by go-redis. TTL handling is delegated to redis key expiry.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harborline/bms/internal/auth/cache"
)

type Cache struct {
	client *goredis.Client
	prefix string
}

// New connects to redis at addr and verifies the connection. All keys are
// namespaced under prefix so one redis can serve multiple services.
func New(ctx context.Context, addr, password string, db int, prefix string) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Cache{client: client, prefix: prefix}, nil
}

func (r *Cache) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Cache) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", cache.ErrMiss
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (r *Cache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Cache) Close() error { return r.client.Close() }
