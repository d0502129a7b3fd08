package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/restaurant-discovery/pkg/logger"
)

// DefaultTTL is used when the cache is created with a non-positive TTL
const DefaultTTL = 5 * time.Minute

// InvalidationHold is how long an invalidated key refuses new entries. A
// reader that loaded the row before the write cannot cache it afterwards.
const InvalidationHold = 10 * time.Second

const tombstone = "-"

// DetailCache stores the anonymous part of restaurant detail responses in
// Redis. A nil *DetailCache or nil client disables caching.
type DetailCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewDetailCache creates a detail cache
func NewDetailCache(redisClient *redis.Client, ttl time.Duration) *DetailCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DetailCache{redis: redisClient, ttl: ttl}
}

func detailKey(restaurantID uint) string {
	return fmt.Sprintf("restaurant:detail:%d", restaurantID)
}

func (c *DetailCache) enabled() bool {
	return c != nil && c.redis != nil
}

// Get decodes the cached entry into dest and reports whether it was a hit.
// Redis failures count as a miss.
func (c *DetailCache) Get(ctx context.Context, restaurantID uint, dest interface{}) bool {
	if !c.enabled() {
		return false
	}

	key := detailKey(restaurantID)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Cache read failed")
		}
		return false
	}

	if string(data) == tombstone {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Discarding undecodable cache entry")
		c.redis.Del(ctx, key)
		return false
	}

	logger.Debug(ctx).Str("cache_key", key).Msg("Cache hit")
	return true
}

// Set stores value for the configured TTL unless the key is held by a
// recent invalidation.
func (c *DetailCache) Set(ctx context.Context, restaurantID uint, value interface{}) {
	if !c.enabled() {
		return
	}

	key := detailKey(restaurantID)
	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to encode cache entry")
		return
	}
	stored, err := c.redis.SetNX(ctx, key, data, c.ttl).Result()
	if err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache response")
		return
	}
	if !stored {
		logger.Debug(ctx).Str("cache_key", key).Msg("Cache key held, response not cached")
		return
	}

	logger.Debug(ctx).
		Str("cache_key", key).
		Dur("ttl", c.ttl).
		Int("size", len(data)).
		Msg("Response cached")
}

// Invalidate replaces the cached entry of a restaurant with a tombstone that
// lives for InvalidationHold.
func (c *DetailCache) Invalidate(ctx context.Context, restaurantID uint) {
	if !c.enabled() {
		return
	}
	key := detailKey(restaurantID)
	if err := c.redis.Set(ctx, key, tombstone, InvalidationHold).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to invalidate cache")
	}
}
