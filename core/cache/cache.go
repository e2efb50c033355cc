package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"syncme/core/config"
	"syncme/core/logger"
)

// Cache is a thin wrapper over redis used for provider payloads that are
// expensive to rebuild (voice catalogs, transcripts). A nil Cache is valid
// and behaves as a permanent miss so callers never have to branch on wiring.
type Cache struct {
	rdb *redis.Client
}

func New(cfg config.RedisConfig) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Cache:New:Connected", "addr", cfg.Addr)
	return &Cache{rdb: rdb}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Warn("Cache:Get:Error", "key", key, "error", err)
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Warn("Cache:Set:Error", "key", key, "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, key string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		logger.Warn("Cache:Delete:Error", "key", key, "error", err)
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
