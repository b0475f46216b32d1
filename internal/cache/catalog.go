package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "catalog:"

// Keys for the public catalog lookups.
const (
	KeyOEMs       = "oem:all"
	KeyPartCount  = "parts:count"
	KeyCategories = "categories:summary"
)

// KeyTrtByOEM returns the key for trt codes carrying oem.
func KeyTrtByOEM(oem string) string { return "trt:oem:" + oem }

// KeyBrandsByTrt returns the key for brands of a trt code.
func KeyBrandsByTrt(trt string) string { return "brand:trt:" + trt }

// KeyModelsByBrand returns the key for models of a brand.
func KeyModelsByBrand(brand string) string { return "model:brand:" + brand }

// CatalogCache is a read-through JSON cache for catalog lookups.
// A nil *CatalogCache, or one without a client, passes every call through to the loader.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogCache builds the cache. ttl <= 0 falls back to five minutes.
func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{client: client, ttl: ttl, logger: logger}
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.client != nil
}

// Remember returns the cached value under key or calls load and stores its result.
// Redis failures are logged and never fail the request.
func Remember[T any](ctx context.Context, c *CatalogCache, key string, load func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return load(ctx)
	}

	fullKey := keyPrefix + key
	data, err := c.client.Get(ctx, fullKey).Bytes()
	switch {
	case err == nil:
		var cached T
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached, nil
		}
		c.client.Del(ctx, fullKey)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache get failed", zap.String("key", fullKey), zap.Error(err))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if payload, err := json.Marshal(value); err == nil {
		if err := c.client.Set(ctx, fullKey, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("cache set failed", zap.String("key", fullKey), zap.Error(err))
		}
	}
	return value, nil
}

// Invalidate drops every catalog key.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}
