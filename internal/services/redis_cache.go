package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/temcen/quickrec/pkg/models"
)

// RedisResultCache stores recommendation lists as JSON. Keys embed the model build id, so
// entries from an earlier process never match the current model.
type RedisResultCache struct {
	client *redis.Client
	prefix string
}

func NewRedisResultCache(client *redis.Client, prefix string) *RedisResultCache {
	if prefix == "" {
		prefix = "quickrec"
	}
	return &RedisResultCache{client: client, prefix: prefix}
}

func (c *RedisResultCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *RedisResultCache) Get(ctx context.Context, key string) ([]models.Recommendation, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, fmt.Errorf("decode cached recommendations: %w", err)
	}
	return recs, true, nil
}

func (c *RedisResultCache) Set(ctx context.Context, key string, recs []models.Recommendation, ttl time.Duration) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
