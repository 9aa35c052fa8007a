// Package cache wraps a Redis client with JSON get/set helpers.
//
// A nil *Cache, or one whose server was unreachable at startup, is a valid
// cache that always misses. Callers never need to check for availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/pantry/config"
	"github.com/shashiranjanraj/pantry/pkg/metrics"
)

type Cache struct {
	rdb    *redis.Client
	prefix string
}

// Connect dials Redis and verifies it with a ping. On failure it returns a
// disabled cache along with the error so the caller can decide to log and
// carry on.
func Connect(ctx context.Context) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return &Cache{}, fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(rdb, "pantry:"), nil
}

// New wraps an existing client. Keys are stored under prefix.
func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil }

// Get unmarshals the value under key into dest. Returns true on a hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}

	val, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.Inc()
		return false
	}
	metrics.CacheHits.Inc()
	return true
}

// Set stores value as JSON for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Forget removes keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.rdb.Del(ctx, full...).Err()
}

// Remember returns the cached value under key, or calls fn, caches its result
// and returns it.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var out T
	if c.Get(ctx, key, &out) {
		return out, nil
	}
	out, err := fn()
	if err != nil {
		return out, err
	}
	_ = c.Set(ctx, key, out, ttl)
	return out, nil
}

func (c *Cache) Close() error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Close()
}
