package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore wraps a redis client used as a shared TTL cache for collaborator
// responses. Reruns of the same search query or recommendation prompt within
// the TTL are served from cache instead of hitting the external AI services.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// ErrCacheMiss is returned when a key is absent from the response cache.
var ErrCacheMiss = errors.New("cache miss")

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// GetResponse fetches a cached collaborator response body.
func (r *RedisStore) GetResponse(ctx context.Context, key string) ([]byte, error) {
	val, err := r.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// SetResponse stores a collaborator response body with the given TTL.
func (r *RedisStore) SetResponse(ctx context.Context, key string, body []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, key, body, ttl).Err()
}

// SearchCacheKey builds the cache key for one semantic search query.
func SearchCacheKey(indexID, videoID, query string) string {
	return fmt.Sprintf("search:%s:%s:%s", indexID, videoID, query)
}

// RecommendCacheKey builds the cache key for one recommendation prompt.
func RecommendCacheKey(category, tone, contextDigest string) string {
	return fmt.Sprintf("recommend:%s:%s:%s", category, tone, contextDigest)
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
