package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a namespaced view over a redis client.
type Cache struct {
	client redis.UniversalClient
}

func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

func key(namespace, k string) string {
	return namespace + ":" + k
}

func (c *Cache) Set(ctx context.Context, namespace, k string, value any, ttl time.Duration) error {
	return c.client.Set(ctx, key(namespace, k), value, ttl).Err()
}

func (c *Cache) Exists(ctx context.Context, namespace, k string) (bool, error) {
	n, err := c.client.Exists(ctx, key(namespace, k)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Cache) Delete(ctx context.Context, namespace string, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = key(namespace, k)
	}
	return c.client.Del(ctx, full...).Err()
}

// IncrWithExpire bumps a counter and starts its window on the first hit.
func (c *Cache) IncrWithExpire(ctx context.Context, namespace, k string, window time.Duration) (int64, error) {
	countKey := key(namespace, k)

	cnt, err := c.client.Incr(ctx, countKey).Result()
	if err != nil {
		return 0, err
	}

	if cnt == 1 {
		if err := c.client.Expire(ctx, countKey, window).Err(); err != nil {
			return cnt, err
		}
	}

	return cnt, nil
}
