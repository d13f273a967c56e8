// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"feedstream/internal/models"
	"feedstream/internal/utils"

	"github.com/redis/go-redis/v9"
)

const feedKey = "feed:global"

// RedisCache stores the feed as a JSON value in Redis. TTL is optional;
// invalidation deletes the key outright.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ FeedCache = (*RedisCache)(nil)

// NewRedisCache connects to the given address and verifies the connection.
func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, utils.NewCacheError("ping", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context) ([]models.PostView, bool, error) {
	raw, err := c.client.Get(ctx, feedKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, utils.NewCacheError("get", err)
	}

	var feed []models.PostView
	if err := json.Unmarshal([]byte(raw), &feed); err != nil {
		// A corrupt entry reads as a miss; the next Set overwrites it.
		return nil, false, utils.NewCacheError("decode", err)
	}
	return feed, true, nil
}

func (c *RedisCache) Set(ctx context.Context, feed []models.PostView) error {
	raw, err := json.Marshal(feed)
	if err != nil {
		return utils.NewCacheError("encode", err)
	}
	if err := c.client.Set(ctx, feedKey, raw, c.ttl).Err(); err != nil {
		return utils.NewCacheError("set", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, feedKey).Err(); err != nil {
		return utils.NewCacheError("del", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
