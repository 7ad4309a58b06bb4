package universe

import (
	"github.com/wonny/sift/internal/contracts"
	"github.com/wonny/sift/pkg/config"
	"github.com/wonny/sift/pkg/httputil"
	"github.com/wonny/sift/pkg/logger"
	"github.com/wonny/sift/pkg/redis"
)

// Resolve picks the universe source for a run: an explicit file wins,
// then a configured constituents page, then the built-in list. A
// configured file that fails to load is an error, not a fallthrough.
// Scraped sources go through the cache when one is supplied; local
// sources never do.
func Resolve(cfg *config.Config, client *httputil.Client, cache *redis.Cache, log *logger.Logger) (contracts.UniverseSource, error) {
	if cfg.Screen.UniverseFile != "" {
		u, err := LoadFile(cfg.Screen.UniverseFile)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	if cfg.Screen.UniverseURL != "" {
		scraper := NewScraper(client, cfg.Screen.UniverseURL, DefaultBenchmark, log)
		if cache != nil {
			return NewCached(scraper, cache, log), nil
		}
		return scraper, nil
	}
	return Default(), nil
}
