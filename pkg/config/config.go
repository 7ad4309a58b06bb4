package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Candle feed
	Feed FeedConfig

	// Screening defaults
	Screen ScreenConfig

	// Scheduler
	Schedule ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// FeedConfig selects and tunes the candle provider
type FeedConfig struct {
	Provider     string // postgres, chart
	ChartBaseURL string // chart endpoint the query string is appended to
	RatePerSec   int    // chart provider request budget
	Timeout      time.Duration
	CacheEnabled bool
}

// ScreenConfig holds screening run defaults
type ScreenConfig struct {
	Strategy     string // default strategy name
	Workers      int    // 0 = derived from CPU count
	ResultsDir   string
	UniverseFile string // optional YAML universe override
	UniverseURL  string // optional constituents page to scrape
	ProfileFile  string // optional YAML strategy override
}

// ScheduleConfig holds the cron schedule for unattended runs
type ScheduleConfig struct {
	Enabled bool
	Spec    string // cron spec with seconds field
}

// Load reads configuration from environment variables
// ⭐ SSOT: this is the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "sift"),
			User:            getEnv("DB_USER", "sift"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Candle feed
		Feed: FeedConfig{
			Provider:     getEnv("FEED_PROVIDER", "postgres"),
			ChartBaseURL: getEnv("FEED_CHART_BASE_URL", ""),
			RatePerSec:   getEnvAsInt("FEED_RATE_PER_SEC", 5),
			Timeout:      getEnvAsDuration("FEED_TIMEOUT", "10s"),
			CacheEnabled: getEnvAsBool("FEED_CACHE_ENABLED", true),
		},

		// Screening defaults
		Screen: ScreenConfig{
			Strategy:     getEnv("SCREEN_STRATEGY", "swing"),
			Workers:      getEnvAsInt("SCREEN_WORKERS", 0),
			ResultsDir:   getEnv("SCREEN_RESULTS_DIR", "results"),
			UniverseFile: getEnv("SCREEN_UNIVERSE_FILE", ""),
			UniverseURL:  getEnv("SCREEN_UNIVERSE_URL", ""),
			ProfileFile:  getEnv("SCREEN_PROFILE_FILE", ""),
		},

		// Scheduler
		Schedule: ScheduleConfig{
			Enabled: getEnvAsBool("SCHEDULE_ENABLED", false),
			Spec:    getEnv("SCHEDULE_CRON", "0 40 15 * * 1-5"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Feed.Provider {
	case "postgres":
		// Database URL is required when candles come from Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when FEED_PROVIDER=postgres")
		}
	case "chart":
		if c.Feed.ChartBaseURL == "" {
			return fmt.Errorf("FEED_CHART_BASE_URL is required when FEED_PROVIDER=chart")
		}
	default:
		return fmt.Errorf("FEED_PROVIDER must be one of: postgres, chart")
	}

	if c.Feed.RatePerSec <= 0 {
		return fmt.Errorf("FEED_RATE_PER_SEC must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
