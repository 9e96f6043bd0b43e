package repository

import (
	"context"
	"time"
)

// CacheRepository stores serialized results under a key. A failed lookup is
// reported as a miss.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// NoopCache never stores anything. It is used when caching is disabled.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (string, bool) { return "", false }

func (NoopCache) Set(context.Context, string, string, time.Duration) error { return nil }
