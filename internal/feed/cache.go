package feed

import (
	"context"
	"time"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/logger"
	"github.com/wonny/sift/pkg/redis"
)

// CachedProvider wraps another provider with a Redis read-through cache.
// Cache failures degrade to a direct fetch; they never fail the request.
type CachedProvider struct {
	inner contracts.CandleProvider
	cache *redis.Cache
	log   *logger.Logger
}

// NewCachedProvider wraps inner with the given cache.
func NewCachedProvider(inner contracts.CandleProvider, cache *redis.Cache, log *logger.Logger) *CachedProvider {
	if log == nil {
		log = logger.NewNop()
	}
	return &CachedProvider{inner: inner, cache: cache, log: log}
}

// Candles implements contracts.CandleProvider.
func (p *CachedProvider) Candles(ctx context.Context, symbol string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	key := candleCacheKey(symbol, tf, from, to)

	var cached []contracts.Candle
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.log.WithError(err).WithField("key", key).Warn("Candle cache read failed")
	}
	if found {
		return cached, nil
	}

	candles, err := p.inner.Candles(ctx, symbol, tf, from, to)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, candles, cacheTTL(tf)); err != nil {
		p.log.WithError(err).WithField("key", key).Warn("Candle cache write failed")
	}
	return candles, nil
}

func candleCacheKey(symbol string, tf contracts.Timeframe, from, to time.Time) string {
	window := from.Format("20060102") + "-" + to.Format("20060102")
	return redis.CandleKey(symbol, string(tf), window)
}

func cacheTTL(tf contracts.Timeframe) time.Duration {
	switch tf {
	case contracts.TimeframeDaily:
		return redis.TTLDaily
	case contracts.TimeframeWeekly:
		return redis.TTLWeekly
	default:
		return redis.TTLIntraday
	}
}
