package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"meal-planner/internal/recipe"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache on top of Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the cached value or ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

// Set stores value under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedSource memoizes remote catalog responses per meal type.
type CachedSource struct {
	next   Source
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps next with a response cache.
func NewCachedSource(next Source, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Fetch serves from the cache when possible. Cache failures fall through to
// the wrapped source.
func (s *CachedSource) Fetch(ctx context.Context, mt recipe.MealType) ([]recipe.Recipe, error) {
	key := cacheKey(mt)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var recs []recipe.Recipe
		if err := json.Unmarshal(data, &recs); err == nil {
			s.logger.Debug("catalog cache hit", zap.String("key", key), zap.Int("count", len(recs)))
			return recs, nil
		}
		s.logger.Warn("discarding undecodable catalog cache entry", zap.String("key", key))
	case !errors.Is(err, ErrCacheMiss):
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	recs, err := s.next.Fetch(ctx, mt)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(recs)
	if err != nil {
		return recs, nil
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return recs, nil
}

func cacheKey(mt recipe.MealType) string {
	return fmt.Sprintf("catalog:recipes:%s", mt)
}
