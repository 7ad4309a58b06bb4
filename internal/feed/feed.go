// Package feed supplies candle series to the screening pipeline. Two
// providers are available: a Postgres-backed one that reads candles an
// ingestion job has already stored, and a chart one that pulls them from
// the public chart endpoint on demand. Either can be wrapped with a Redis
// read-through cache.
//
// All providers serve half-open windows: a candle is returned when
// from <= ts < to.
package feed

import (
	"fmt"
	"time"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/config"
	"github.com/wonny/sift/pkg/database"
	"github.com/wonny/sift/pkg/httputil"
	"github.com/wonny/sift/pkg/logger"
	"github.com/wonny/sift/pkg/redis"
)

// Opening-range bars are regular intraday bars inside this slice of the
// session, half-open [09:15, 09:30).
const (
	openingStartOffset = 9*time.Hour + 15*time.Minute
	openingEndOffset   = 9*time.Hour + 30*time.Minute
)

// New builds the candle provider selected by cfg.Feed.Provider and wraps
// it with the Redis cache when caching is enabled.
// ⭐ SSOT: provider selection happens here and nowhere else
func New(cfg *config.Config, db *database.DB, client *httputil.Client, cache *redis.Cache, log *logger.Logger) (contracts.CandleProvider, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var provider contracts.CandleProvider
	switch cfg.Feed.Provider {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres feed requires a database connection")
		}
		provider = NewPostgresProvider(db, log)
	case "chart":
		if client == nil {
			return nil, fmt.Errorf("chart feed requires an HTTP client")
		}
		provider = NewChartProvider(client, cfg.Feed.ChartBaseURL, cfg.Feed.RatePerSec, log)
	default:
		return nil, fmt.Errorf("unknown feed provider %q", cfg.Feed.Provider)
	}

	if cfg.Feed.CacheEnabled && cache != nil {
		provider = NewCachedProvider(provider, cache, log)
	}
	return provider, nil
}

// openingWindow narrows a session window to the opening range of the day
// the window starts on.
func openingWindow(from time.Time) (time.Time, time.Time) {
	y, m, d := from.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	return day.Add(openingStartOffset), day.Add(openingEndOffset)
}
