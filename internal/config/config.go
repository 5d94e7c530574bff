// Package config loads the gameday CLI configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/gameday/pkg/cache"
	"github.com/fortuna/gameday/pkg/fetch"
	"github.com/fortuna/gameday/pkg/gameday"
	"github.com/fortuna/gameday/pkg/stats"
)

// ProviderConfig holds the remote hosts.
type ProviderConfig struct {
	Endpoints gameday.Endpoints
	StatsURL  string
}

// FetchConfig holds the polite fetch settings.
type FetchConfig struct {
	Delay     fetch.Delay
	Timeout   time.Duration
	UserAgent string
}

// StoreConfig holds the identity store backends. An empty DatabaseURL selects
// the in-memory store; an empty RedisURL disables the read cache.
type StoreConfig struct {
	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration
}

// Config holds all application configuration
type Config struct {
	Provider             ProviderConfig
	Fetch                FetchConfig
	Store                StoreConfig
	PublishRosterChanges bool
	ReferencePath        string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Provider: ProviderConfig{
			Endpoints: gameday.Endpoints{
				GD2:      baseURL("GAMEDAY_BASE_URL", gameday.DefaultGD2Base),
				GDX:      baseURL("GAMEDAY_GDX_URL", gameday.DefaultGDXBase),
				StatsAPI: baseURL("GAMEDAY_STATSAPI_URL", gameday.DefaultStatsAPIBase),
				Savant:   baseURL("GAMEDAY_SAVANT_URL", gameday.DefaultSavantBase),
			},
			StatsURL: baseURL("GAMEDAY_STATS_URL", stats.DefaultBaseURL),
		},
		Fetch: FetchConfig{
			Delay: fetch.Delay{
				Min: envDuration("FETCH_DELAY_MIN", fetch.DefaultDelay.Min),
				Max: envDuration("FETCH_DELAY_MAX", fetch.DefaultDelay.Max),
			},
			Timeout:   envDuration("FETCH_TIMEOUT", fetch.DefaultTimeout),
			UserAgent: envOr("FETCH_USER_AGENT", fetch.UserAgent),
		},
		Store: StoreConfig{
			DatabaseURL: envOr("DATABASE_URL", ""),
			RedisURL:    envOr("REDIS_URL", ""),
			CacheTTL:    envDuration("IDENTITY_CACHE_TTL", cache.DefaultTTL),
		},
		PublishRosterChanges: envBool("PUBLISH_ROSTER_CHANGES", false),
		ReferencePath:        envOr("REFERENCE_DATA_PATH", "configs/reference.yaml"),
	}

	if cfg.Fetch.Delay.Min < 0 || cfg.Fetch.Delay.Max < 0 {
		return nil, fmt.Errorf("fetch delay must not be negative (min %s, max %s)", cfg.Fetch.Delay.Min, cfg.Fetch.Delay.Max)
	}
	if cfg.Fetch.Delay.Min > cfg.Fetch.Delay.Max {
		return nil, fmt.Errorf("FETCH_DELAY_MIN %s exceeds FETCH_DELAY_MAX %s", cfg.Fetch.Delay.Min, cfg.Fetch.Delay.Max)
	}
	if cfg.PublishRosterChanges && cfg.Store.RedisURL == "" {
		return nil, fmt.Errorf("PUBLISH_ROSTER_CHANGES requires REDIS_URL")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("750ms") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func baseURL(key, fallback string) string {
	v := envOr(key, fallback)
	if !strings.HasSuffix(v, "/") {
		v += "/"
	}
	return v
}
