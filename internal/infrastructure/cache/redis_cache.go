package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint passed to SCAN during invalidation
const scanBatch = 200

// RedisCache is a Store shared by every replica. Keys are namespaced so
// invalidation never touches foreign keys.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

func NewRedisCache(client *redis.Client, namespace string) *RedisCache {
	return &RedisCache{client: client, namespace: namespace}
}

func (c *RedisCache) key(k string) string {
	return c.namespace + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached response: %w", err)
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// DeletePrefix walks the keyspace with SCAN and deletes every match
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache prefix %s: %w", prefix, err)
	}
	return nil
}

// Ping checks the connection for readiness
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
