package universe

import (
	"context"
	"strings"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/logger"
	"github.com/wonny/sift/pkg/redis"
)

// Cached wraps another source with a Redis read-through cache so a
// constituents page is scraped at most once per TTL across processes.
// Cache failures degrade to a direct fetch; they never fail resolution.
type Cached struct {
	inner contracts.UniverseSource
	cache *redis.Cache
	log   *logger.Logger
}

// NewCached wraps inner with the given cache.
func NewCached(inner contracts.UniverseSource, cache *redis.Cache, log *logger.Logger) *Cached {
	if log == nil {
		log = logger.NewNop()
	}
	return &Cached{inner: inner, cache: cache, log: log}
}

// Symbols implements contracts.UniverseSource.
func (c *Cached) Symbols(ctx context.Context) ([]string, error) {
	key := redis.UniverseKey(strings.ToLower(c.inner.Benchmark()))

	var cached []string
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Universe cache read failed")
	}
	if found {
		return cached, nil
	}

	symbols, err := c.inner.Symbols(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, symbols, redis.TTLUniverse); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("Universe cache write failed")
	}
	return symbols, nil
}

// Benchmark implements contracts.UniverseSource.
func (c *Cached) Benchmark() string { return c.inner.Benchmark() }
