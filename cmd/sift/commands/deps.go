package commands

import (
	"fmt"

	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/internal/feed"
	"github.com/wonny/sift/internal/output"
	"github.com/wonny/sift/internal/screener"
	"github.com/wonny/sift/internal/strategyconfig"
	"github.com/wonny/sift/internal/universe"
	"github.com/wonny/sift/pkg/config"
	"github.com/wonny/sift/pkg/database"
	"github.com/wonny/sift/pkg/httputil"
	"github.com/wonny/sift/pkg/logger"
	"github.com/wonny/sift/pkg/redis"
)

// appDeps bundles the wired screening dependencies shared by the
// screen, api and scheduler commands.
type appDeps struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	provider contracts.CandleProvider
	universe contracts.UniverseSource
	registry *strategyconfig.Registry
	store    *output.Store
}

// Close releases held connections.
func (d *appDeps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}

// initDeps wires the candle feed, universe source, strategy registry
// and report store from config.
func initDeps(cfg *config.Config, log *logger.Logger) (*appDeps, error) {
	deps := &appDeps{cfg: cfg, log: log}

	// 1. Database (only the postgres feed needs one)
	if cfg.Feed.Provider == "postgres" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		deps.db = db
	}

	// 2. Redis candle cache (optional, a run continues without it)
	var cache *redis.Cache
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, candle cache disabled")
	} else {
		deps.redis = redisClient
		if redisClient.Enabled() {
			cache = redis.NewCache(redisClient, "sift")
		}
	}

	// 3. HTTP client (chart feed and universe scraping). With Redis
	// available, chart requests also honor a cross-process budget so
	// concurrent sift processes share one allowance.
	client := httputil.NewWithTimeout(cfg, log, cfg.Feed.Timeout)
	if cfg.Feed.Provider == "chart" && deps.redis != nil && deps.redis.Enabled() {
		limit := redis.ChartRateLimit
		limit.Limit = cfg.Feed.RatePerSec
		client = client.WithRateLimiter(redis.NewRateLimiter(deps.redis, "sift"), limit)
	}

	// 4. Candle feed
	provider, err := feed.New(cfg, deps.db, client, cache, log)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("build candle feed: %w", err)
	}
	deps.provider = provider

	// 5. Universe source. Constituent scraping runs on its own client
	// with a gentler budget than the chart feed.
	universeClient := httputil.NewWithTimeout(cfg, log, cfg.Feed.Timeout)
	if deps.redis != nil && deps.redis.Enabled() {
		universeClient = universeClient.WithRateLimiter(redis.NewRateLimiter(deps.redis, "sift"), redis.ScrapeRateLimit)
	}
	src, err := universe.Resolve(cfg, universeClient, cache, log)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	deps.universe = src

	// 6. Strategy registry with the optional profile overlay
	registry, err := buildRegistry(cfg)
	if err != nil {
		deps.Close()
		return nil, err
	}
	deps.registry = registry

	// 7. Report store
	deps.store = output.NewStore(cfg.Screen.ResultsDir, log)

	return deps, nil
}

// buildRegistry returns the built-in profiles plus the configured
// overlay, when one is set.
func buildRegistry(cfg *config.Config) (*strategyconfig.Registry, error) {
	registry := strategyconfig.NewRegistry()

	if cfg.Screen.ProfileFile != "" {
		profile, _, err := strategyconfig.Load(cfg.Screen.ProfileFile)
		if err != nil {
			return nil, fmt.Errorf("load strategy profile: %w", err)
		}
		if err := registry.Register(profile); err != nil {
			return nil, fmt.Errorf("register strategy profile: %w", err)
		}
	}

	return registry, nil
}

// newScreener builds a screener bound to the given profile.
func (d *appDeps) newScreener(profile *strategyconfig.StrategyProfile) (*screener.Screener, error) {
	scr, err := screener.New(d.provider, d.universe, profile, screener.Options{Workers: d.cfg.Screen.Workers}, d.log)
	if err != nil {
		return nil, fmt.Errorf("build %s screener: %w", profile.Name, err)
	}
	return scr, nil
}
