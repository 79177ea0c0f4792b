// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, parsed from DAGU_* variables.
type Config struct {
	// APIURL is the marketplace backend root.
	APIURL string `env:"DAGU_API_URL" envDefault:"http://localhost:8000"`

	// RedisURL enables the persistent warm cache when set.
	RedisURL string `env:"DAGU_REDIS_URL"`

	// SearchDisplay caps merged search results per query.
	SearchDisplay int `env:"DAGU_SEARCH_DISPLAY" envDefault:"20"`

	// CacheStaleAfter is the staleness window for cached results.
	CacheStaleAfter time.Duration `env:"DAGU_CACHE_STALE_AFTER" envDefault:"3m"`

	// CacheRetainFor is how long unwatched entries are retained.
	CacheRetainFor time.Duration `env:"DAGU_CACHE_RETAIN_FOR" envDefault:"5m"`

	// MinLoading is the minimum visible-loading duration per submission.
	MinLoading time.Duration `env:"DAGU_MIN_LOADING" envDefault:"800ms"`

	// SuggestDebounce is the autocomplete debounce window.
	SuggestDebounce time.Duration `env:"DAGU_SUGGEST_DEBOUNCE" envDefault:"300ms"`

	// RequestTimeout bounds each backend request.
	RequestTimeout time.Duration `env:"DAGU_REQUEST_TIMEOUT" envDefault:"10s"`

	// AuthTTL is how long a probed auth status is trusted.
	AuthTTL time.Duration `env:"DAGU_AUTH_TTL" envDefault:"5m"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.SearchDisplay < 1 || cfg.SearchDisplay > 100 {
		return Config{}, fmt.Errorf("config: DAGU_SEARCH_DISPLAY must be 1..100, got %d", cfg.SearchDisplay)
	}
	return cfg, nil
}
