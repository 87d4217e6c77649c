package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/termgraph/changetrack/internal/domain"
)

const cacheKeyPrefix = "changetrack:ctx:"

// CachedRegistry decorates a registry with a Redis cache so context
// resolution on the hot write path avoids a metadata query per record.
// Lookups fall through to the inner registry on cache miss; negative results
// are not cached.
type CachedRegistry struct {
	inner  ContextRegistry
	client *redis.Client
	ttl    time.Duration
}

// NewCachedRegistry wraps the inner registry with a Redis cache.
func NewCachedRegistry(inner ContextRegistry, client *redis.Client, ttl time.Duration) *CachedRegistry {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedRegistry{inner: inner, client: client, ttl: ttl}
}

func (r *CachedRegistry) TrackingContext(ctx context.Context, vocabulary domain.URI) (string, error) {
	key := cacheKeyPrefix + string(vocabulary)

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		// Cache unavailability degrades to a metadata lookup.
		return r.inner.TrackingContext(ctx, vocabulary)
	}

	trackingContext, err := r.inner.TrackingContext(ctx, vocabulary)
	if err != nil {
		return "", err
	}
	if setErr := r.client.Set(ctx, key, trackingContext, r.ttl).Err(); setErr != nil {
		return trackingContext, nil
	}
	return trackingContext, nil
}

func (r *CachedRegistry) Register(ctx context.Context, vocabulary domain.URI, trackingContext string) error {
	if err := r.inner.Register(ctx, vocabulary, trackingContext); err != nil {
		return err
	}
	key := cacheKeyPrefix + string(vocabulary)
	if err := r.client.Set(ctx, key, trackingContext, r.ttl).Err(); err != nil {
		return fmt.Errorf("registered but failed to refresh cache: %w", err)
	}
	return nil
}
