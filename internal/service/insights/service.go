// Package insights serves campaign performance reports, optionally through
// a shared Redis cache.
package insights

import (
	"context"
	"time"

	"github.com/ignite/meta-audience-relay/internal/meta"
	"github.com/ignite/meta-audience-relay/internal/metrics"
	"github.com/ignite/meta-audience-relay/internal/pkg/logger"
)

// Default reporting window used when the caller omits since/until.
const (
	DefaultSince = "2025-01-01"
	DefaultUntil = "2025-01-30"
)

// Fetcher runs an insights query on the platform. *meta.Client satisfies it.
type Fetcher interface {
	GetCampaignInsights(ctx context.Context, q meta.InsightsQuery) ([]byte, error)
}

// Cache stores report bodies by date range.
type Cache interface {
	Get(ctx context.Context, since, until string) ([]byte, bool, error)
	Set(ctx context.Context, since, until string, body []byte) error
}

// Locker hands out a fill lock per date range. Caches that also implement it
// let one caller populate an entry while the rest wait.
type Locker interface {
	TryLock(ctx context.Context, since, until string) (release func(), ok bool)
}

// Service fetches campaign insights.
type Service struct {
	fetcher  Fetcher
	cache    Cache
	locker   Locker
	waitStep time.Duration
	waitMax  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables read-through caching. A cache that also implements
// Locker gets fill locking.
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
		if l, ok := c.(Locker); ok {
			s.locker = l
		}
	}
}

// WithFillWait sets how often and how long a caller that lost the fill lock
// polls the cache before fetching on its own.
func WithFillWait(step, limit time.Duration) Option {
	return func(s *Service) {
		s.waitStep = step
		s.waitMax = limit
	}
}

// NewService creates an insights service.
func NewService(fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		waitStep: 100 * time.Millisecond,
		waitMax:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CampaignInsights returns the platform's report body verbatim. Empty bounds
// take the default window. Cache failures never fail the request.
func (s *Service) CampaignInsights(ctx context.Context, since, until string) ([]byte, error) {
	if since == "" {
		since = DefaultSince
	}
	if until == "" {
		until = DefaultUntil
	}

	if s.cache == nil {
		return s.fetch(ctx, since, until)
	}

	if body, ok := s.cached(ctx, since, until); ok {
		return body, nil
	}
	metrics.InsightsCacheMisses.Inc()

	if s.locker != nil {
		release, ok := s.locker.TryLock(ctx, since, until)
		if ok {
			defer release()
		} else if body, ok := s.waitForFill(ctx, since, until); ok {
			return body, nil
		}
	}

	body, err := s.fetch(ctx, since, until)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, since, until, body); err != nil {
		logger.Warn("insights cache write failed", "since", since, "until", until, "error", err)
	}
	return body, nil
}

func (s *Service) fetch(ctx context.Context, since, until string) ([]byte, error) {
	return s.fetcher.GetCampaignInsights(ctx, meta.InsightsQuery{Since: since, Until: until})
}

func (s *Service) cached(ctx context.Context, since, until string) ([]byte, bool) {
	body, found, err := s.cache.Get(ctx, since, until)
	if err != nil {
		logger.Warn("insights cache read failed", "since", since, "until", until, "error", err)
		return nil, false
	}
	if found {
		metrics.InsightsCacheHits.Inc()
	}
	return body, found
}

// waitForFill polls the cache while another caller holds the fill lock.
func (s *Service) waitForFill(ctx context.Context, since, until string) ([]byte, bool) {
	if s.waitStep <= 0 || s.waitMax <= 0 {
		return nil, false
	}
	deadline := time.NewTimer(s.waitMax)
	defer deadline.Stop()
	ticker := time.NewTicker(s.waitStep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-deadline.C:
			return nil, false
		case <-ticker.C:
			if body, ok := s.cached(ctx, since, until); ok {
				return body, true
			}
		}
	}
}
