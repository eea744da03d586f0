// Package cache stores insights reports in Redis so repeated dashboard
// queries for the same date range do not each cost a Graph API call.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meta-audience-relay/internal/pkg/logger"
)

const (
	keyPrefix   = "meta:insights"
	fillLockTTL = 30 * time.Second
)

// InsightsCache keeps raw insights bodies keyed by account and date range.
type InsightsCache struct {
	client    *redis.Client
	accountID string
	ttl       time.Duration
}

// NewInsightsCache creates a cache. A non-positive ttl defaults to five minutes.
func NewInsightsCache(client *redis.Client, accountID string, ttl time.Duration) *InsightsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InsightsCache{client: client, accountID: accountID, ttl: ttl}
}

// Key returns the Redis key for a date range.
func (c *InsightsCache) Key(since, until string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, c.accountID, since, until)
}

// Get returns the cached body. found is false on a miss.
func (c *InsightsCache) Get(ctx context.Context, since, until string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.Key(since, until)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return data, true, nil
}

// Set stores body for the configured TTL.
func (c *InsightsCache) Set(ctx context.Context, since, until string, body []byte) error {
	if err := c.client.Set(ctx, c.Key(since, until), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Lock returns a fill lock for a date range. Holders fetch from the platform
// and populate the cache while other instances wait for the entry.
func (c *InsightsCache) Lock(since, until string, ttl time.Duration) *FillLock {
	return NewFillLock(c.client, c.Key(since, until), ttl)
}

// TryLock takes the fill lock for a date range. When Redis cannot be reached
// the caller is told to proceed as the filler so the request is not delayed.
func (c *InsightsCache) TryLock(ctx context.Context, since, until string) (func(), bool) {
	lock := c.Lock(since, until, fillLockTTL)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		logger.Warn("insights fill lock unavailable", "key", c.Key(since, until), "error", err)
		return func() {}, true
	}
	if !ok {
		return nil, false
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("insights fill lock release failed", "key", c.Key(since, until), "error", err)
		}
	}, true
}
