package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tour-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache wraps the redis client with JSON helpers. A nil *Cache is a
// valid no-op cache, so callers never have to branch on availability.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func New(config utils.RedisConfig, logger *zap.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    time.Duration(config.TTLSecs) * time.Second,
		log:    logger.With(zap.String("component", "cache")),
	}, nil
}

// GetJSON loads a cached value into dest. Returns false on miss or
// decode failure; cache errors are logged, never propagated.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("Cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// SetJSON stores a value under key with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes all keys matching pattern (e.g. "tours:*").
func (c *Cache) Invalidate(ctx context.Context, pattern string) {
	if c == nil {
		return
	}

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.log.Warn("Cache delete failed", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Cache scan failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.client.Close()
}
