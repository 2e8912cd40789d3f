// Package worldcache keeps a short-lived view of what the platform is talking
// about. It is an owned object with an explicit lifecycle: construct once at
// process start, read from any goroutine, refresh lazily when the TTL lapses.
package worldcache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultTTL = 10 * time.Minute

// Fetch produces the current trending topics, most popular first.
type Fetch func(ctx context.Context) ([]string, error)

// Snapshot is the persisted form of the cache, written so a restart does not
// begin with a cold view of the world.
type Snapshot struct {
	Topics    []string  `json:"topics"`
	FetchedAt time.Time `json:"fetched_at"`
}

type Cache struct {
	fetch  Fetch
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	persist func(Snapshot) // optional, best-effort

	mu        sync.RWMutex
	topics    []string
	fetchedAt time.Time
}

type Option func(*Cache)

// WithTTL overrides the refresh interval.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithSnapshot seeds the cache from a previously persisted snapshot and
// registers persist to be called, best-effort, after every successful refresh.
func WithSnapshot(seed Snapshot, persist func(Snapshot)) Option {
	return func(c *Cache) {
		c.topics = append([]string(nil), seed.Topics...)
		c.fetchedAt = seed.FetchedAt
		c.persist = persist
	}
}

func New(fetch Fetch, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		fetch:  fetch,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Topics returns the trending topics, refreshing first if the cached view has
// expired. A failed refresh serves the stale view instead of an error; the
// caller only sees an empty slice when there has never been a successful
// fetch.
func (c *Cache) Topics(ctx context.Context) []string {
	c.mu.RLock()
	fresh := !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl
	cached := c.topics
	c.mu.RUnlock()
	if fresh {
		return append([]string(nil), cached...)
	}
	return c.refresh(ctx)
}

func (c *Cache) refresh(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		return append([]string(nil), c.topics...)
	}

	topics, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("worldcache_refresh_failed", "error", err, "stale_topics", len(c.topics))
		return append([]string(nil), c.topics...)
	}
	c.topics = append([]string(nil), topics...)
	c.fetchedAt = c.now()
	if c.persist != nil {
		c.persist(Snapshot{Topics: c.topics, FetchedAt: c.fetchedAt})
	}
	c.logger.Debug("worldcache_refreshed", "topics", len(topics))
	return append([]string(nil), c.topics...)
}
