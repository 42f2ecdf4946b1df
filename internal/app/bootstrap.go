package service

import (
	"context"
	"fmt"

	"github.com/okian/escala/internal/adapters/feed"
	"github.com/okian/escala/internal/adapters/repository"
	"github.com/okian/escala/internal/config"
	"github.com/okian/escala/internal/domain/squad"
	"github.com/okian/escala/pkg/logger"
)

// FromConfig builds an unstarted Service from cfg; extra options are
// applied last. The returned close function releases the cache connection
// and is never nil.
func FromConfig(ctx context.Context, cfg *config.Config, log logger.Logger, extra ...Option) (*Service, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	noop := func() error { return nil }

	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, noop, err
	}
	engine := squad.NewEngine(
		squad.WithCatalog(catalog),
		squad.WithReservePerSlot(cfg.ReservePerSlot),
		squad.WithLogger(log.Named("engine")),
	)

	client := feed.NewClient(
		feed.WithBaseURL(cfg.FeedBaseURL),
		feed.WithTimeout(cfg.FeedTimeout()),
		feed.WithLogger(log.Named("feed")),
	)

	var (
		cache   feed.Cache
		closeFn = noop
	)
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rc := feed.NewRedisCache(feed.DialRedis(cfg.RedisAddr, cfg.RedisDB))
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, noop, fmt.Errorf("redis cache at %s: %w", cfg.RedisAddr, err)
		}
		cache, closeFn = rc, rc.Close
	default:
		cache = feed.NewMemoryCache()
	}
	log.Info(ctx, "feed cache ready",
		logger.String("backend", cfg.CacheBackend),
		logger.Duration("ttl", cfg.FeedCacheTTL()),
	)

	source := feed.NewCachedSource(client, cache,
		feed.WithTTL(cfg.FeedCacheTTL()),
		feed.WithCacheLogger(log.Named("feed-cache")),
	)

	opts := []Option{
		WithLogger(log),
		WithEngine(engine),
		WithSource(source),
		WithStore(repository.NewTreapStore(repository.WithCapacity(cfg.HistorySize))),
		WithWorkerCount(cfg.BatchWorkers),
		WithMaxBatchSize(cfg.MaxBatchSize),
		WithDefaultBudget(cfg.Budget),
		WithDefaultFormation(cfg.Formation),
	}
	return New(append(opts, extra...)...), closeFn, nil
}
