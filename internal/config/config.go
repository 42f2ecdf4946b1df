// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and ESCALA_ env vars on top of New().
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/okian/escala/internal/domain/formation"
	"github.com/okian/escala/internal/domain/model"
)

// Cache backends accepted by CacheBackend.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Budget is used when a request does not carry one.
	Budget float64 `koanf:"budget"`

	// Formation is used when a request does not name one.
	Formation string `koanf:"formation"`

	// ReservePerSlot is the budget the greedy pass keeps for each open slot.
	ReservePerSlot float64 `koanf:"reserve_per_slot"`

	// BatchWorkers sets the number of goroutines serving batch scenarios.
	BatchWorkers int `koanf:"batch_workers"`

	// MaxBatchSize caps POST /squads/batch.
	MaxBatchSize int `koanf:"max_batch_size"`

	// FeedBaseURL is the root of the market data API.
	FeedBaseURL string `koanf:"feed_base_url"`

	// FeedTimeoutMS bounds a single feed request.
	FeedTimeoutMS int `koanf:"feed_timeout_ms"`

	// FeedCacheTTLSeconds is how long a fetched snapshot is reused.
	FeedCacheTTLSeconds int `koanf:"feed_cache_ttl_seconds"`

	// CacheBackend is memory or redis.
	CacheBackend string `koanf:"cache_backend"`

	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`

	// HistorySize bounds the in-memory roster leaderboard.
	HistorySize int `koanf:"history_size"`

	// Formations adds formations to the two presets.
	Formations []FormationSpec `koanf:"formations"`
}

// FormationSpec is a formation as written in a config file.
type FormationSpec struct {
	Name  string     `koanf:"name"`
	Slots []SlotSpec `koanf:"slots"`
}

// SlotSpec is one position quota; Position takes a code such as GOL or ATA.
type SlotSpec struct {
	Position string `koanf:"position"`
	Count    int    `koanf:"count"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		Budget:              100,
		Formation:           "4-3-3",
		ReservePerSlot:      1.5,
		BatchWorkers:        runtime.NumCPU(),
		MaxBatchSize:        64,
		FeedBaseURL:         "https://api.cartola.globo.com",
		FeedTimeoutMS:       10_000,
		FeedCacheTTLSeconds: 600,
		CacheBackend:        CacheMemory,
		HistorySize:         1000,
	}
}

// FeedTimeout returns FeedTimeoutMS as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMS) * time.Millisecond
}

// FeedCacheTTL returns FeedCacheTTLSeconds as a duration.
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.FeedCacheTTLSeconds) * time.Second
}

// Validate checks field ranges. It does not resolve formations; see Catalog.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Budget <= 0:
		return fmt.Errorf("%w: budget must be positive, got %v", ErrInvalidConfig, c.Budget)
	case c.ReservePerSlot < 0:
		return fmt.Errorf("%w: reserve_per_slot must not be negative, got %v", ErrInvalidConfig, c.ReservePerSlot)
	case c.BatchWorkers <= 0:
		return fmt.Errorf("%w: batch_workers must be positive, got %d", ErrInvalidConfig, c.BatchWorkers)
	case c.MaxBatchSize <= 0:
		return fmt.Errorf("%w: max_batch_size must be positive, got %d", ErrInvalidConfig, c.MaxBatchSize)
	case c.FeedBaseURL == "":
		return fmt.Errorf("%w: feed_base_url must not be empty", ErrInvalidConfig)
	case c.FeedTimeoutMS <= 0:
		return fmt.Errorf("%w: feed_timeout_ms must be positive, got %d", ErrInvalidConfig, c.FeedTimeoutMS)
	case c.FeedCacheTTLSeconds < 0:
		return fmt.Errorf("%w: feed_cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive, got %d", ErrInvalidConfig, c.HistorySize)
	}
	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis backend needs redis_addr", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}

// Catalog builds the formation catalog: the presets plus Formations. The
// default Formation must be present in the result.
func (c *Config) Catalog() (*formation.Catalog, error) {
	all := formation.Presets()
	for _, fs := range c.Formations {
		f := formation.Formation{Name: fs.Name}
		for _, s := range fs.Slots {
			pos, err := model.ParsePosition(s.Position)
			if err != nil {
				return nil, fmt.Errorf("%w: formation %s: %w", ErrInvalidConfig, fs.Name, err)
			}
			f.Slots = append(f.Slots, formation.Quota{Position: pos, Count: s.Count})
		}
		all = append(all, f)
	}
	cat, err := formation.NewCatalog(all...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !cat.Has(c.Formation) {
		return nil, fmt.Errorf("%w: default formation %q is not defined", ErrInvalidConfig, c.Formation)
	}
	return cat, nil
}
