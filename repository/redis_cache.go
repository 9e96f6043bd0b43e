package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache is a CacheRepository backed by Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisCache connects to addr. Keys are namespaced with "loansim:".
func NewRedisCache(addr, password string, db int, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})
	return &RedisCache{
		client: rdb,
		prefix: "loansim:",
		logger: logger,
	}
}

// Ping checks that the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get reports a miss for absent keys. Other Redis errors are logged and
// also reported as a miss.
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	switch {
	case err == nil:
		return val, true
	case errors.Is(err, redis.Nil):
		return "", false
	default:
		r.logger.Warn("redis cache lookup failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Close releases the connection pool.
func (r *RedisCache) Close() error {
	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
