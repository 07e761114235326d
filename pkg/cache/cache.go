// Package cache holds entity lists in Redis between writes.
//
// Entries are keyed by a catalog-wide version stamp. Every successful write
// bumps the stamp, so a reader never sees a list older than the last write
// it observed, and stale entries simply expire.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListCache stores serialized entity lists.
type ListCache interface {
	// Lookup decodes the cached list for kind into dest. It returns the
	// version stamp current at lookup time; pass it to Store on a miss.
	Lookup(ctx context.Context, kind string, dest any) (hit bool, version int64, err error)

	// Store caches value for kind under version.
	Store(ctx context.Context, kind string, version int64, value any) error

	// Invalidate makes every cached list unreachable.
	Invalidate(ctx context.Context) error
}

type redisListCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisListCache creates a ListCache backed by client.
// A zero ttl stores entries without expiry; superseded versions then linger until evicted.
func NewRedisListCache(client *redis.Client, prefix string, ttl time.Duration) ListCache {
	return &redisListCache{client: client, prefix: prefix, ttl: ttl}
}

var _ ListCache = (*redisListCache)(nil)

func (c *redisListCache) versionKey() string {
	return c.prefix + ":version"
}

func (c *redisListCache) listKey(kind string, version int64) string {
	return fmt.Sprintf("%s:list:%s:%d", c.prefix, kind, version)
}

func (c *redisListCache) currentVersion(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, c.versionKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache version: %w", err)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache version %q: %w", raw, err)
	}
	return version, nil
}

func (c *redisListCache) Lookup(ctx context.Context, kind string, dest any) (bool, int64, error) {
	version, err := c.currentVersion(ctx)
	if err != nil {
		return false, 0, err
	}

	data, err := c.client.Get(ctx, c.listKey(kind, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, version, nil
	}
	if err != nil {
		return false, version, fmt.Errorf("failed to read cached %s: %w", kind, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, version, fmt.Errorf("failed to decode cached %s: %w", kind, err)
	}
	return true, version, nil
}

func (c *redisListCache) Store(ctx context.Context, kind string, version int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", kind, err)
	}

	if err := c.client.Set(ctx, c.listKey(kind, version), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", kind, err)
	}
	return nil
}

func (c *redisListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.versionKey()).Err(); err != nil {
		return fmt.Errorf("failed to bump cache version: %w", err)
	}
	return nil
}

type noopListCache struct{}

// NewNoopListCache returns a ListCache that never hits.
func NewNoopListCache() ListCache {
	return noopListCache{}
}

func (noopListCache) Lookup(context.Context, string, any) (bool, int64, error) {
	return false, 0, nil
}

func (noopListCache) Store(context.Context, string, int64, any) error {
	return nil
}

func (noopListCache) Invalidate(context.Context) error {
	return nil
}
