// Package service wires the market feed, the allocation engine and the
// batch worker pool into the operations the HTTP API and the CLI expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/escala/internal/adapters/feed"
	workerpool "github.com/okian/escala/internal/adapters/mq/worker"
	"github.com/okian/escala/internal/adapters/repository"
	"github.com/okian/escala/internal/domain/formation"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/internal/domain/squad"
	"github.com/okian/escala/pkg/logger"
)

// Sentinel errors for this package.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrEmptyBatch    = errors.New("batch has no scenarios")
	ErrBatchTooLarge = errors.New("batch too large")
)

const (
	defaultBudget       = 100.0
	defaultMaxBatchSize = 64
)

// PlayerFilter narrows Players. Zero values match everything.
type PlayerFilter struct {
	Position     model.Position
	Status       *model.Status
	EligibleOnly bool
}

func (f PlayerFilter) match(p model.Player) bool {
	if f.Position != model.PositionUnknown && p.Position != f.Position {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.EligibleOnly && !p.Eligible() {
		return false
	}
	return true
}

// Service implements the API dependencies for squad allocation.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine *squad.Engine
	source feed.Source
	pool   *workerpool.Pool
	store  repository.Store

	// Configuration
	workerCount      int
	maxBatchSize     int
	defaultBudget    float64
	defaultFormation string

	// State
	started   bool
	startedAt time.Time

	// Counters
	allocations atomic.Int64
	failures    atomic.Int64
	batches     atomic.Int64
	scenarios   atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the allocation engine.
func WithEngine(e *squad.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithSource sets where market snapshots come from.
func WithSource(src feed.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithStore sets where generated rosters are kept.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithWorkerCount sets the number of batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMaxBatchSize caps the number of scenarios per batch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithDefaultBudget sets the budget used when a request carries none.
func WithDefaultBudget(b float64) Option {
	return func(s *Service) {
		if b > 0 {
			s.defaultBudget = b
		}
	}
}

// WithDefaultFormation sets the formation used when a request names none.
func WithDefaultFormation(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.defaultFormation = name
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithSource it reads the public feed
// through a ten-minute memory cache.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		maxBatchSize:  defaultMaxBatchSize,
		defaultBudget: defaultBudget,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = squad.NewEngine(squad.WithLogger(s.logger.Named("engine")))
	}
	if s.source == nil {
		s.source = feed.NewCachedSource(
			feed.NewClient(feed.WithLogger(s.logger.Named("feed"))),
			feed.NewMemoryCache(),
		)
	}
	if s.store == nil {
		s.store = repository.NewTreapStore()
	}
	if s.defaultFormation == "" {
		s.defaultFormation = s.engine.Catalog().Names()[0]
		if s.engine.Catalog().Has("4-3-3") {
			s.defaultFormation = "4-3-3"
		}
	}
	return s
}

// Start launches the batch worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if !s.engine.Catalog().Has(s.defaultFormation) {
		return fmt.Errorf("default formation: %w: %q", squad.ErrUnknownFormation, s.defaultFormation)
	}

	s.logger.Info(ctx, "starting squad service...")

	s.pool = workerpool.NewPool(s.workerCount, s.engine,
		workerpool.WithQueueCapacity(s.workerCount*s.maxBatchSize),
		workerpool.WithPoolLogger(s.logger),
	)
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "squad service started",
		logger.Int("workers", s.workerCount),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.Float64("defaultBudget", s.defaultBudget),
		logger.String("defaultFormation", s.defaultFormation),
	)
	return nil
}

// Stop drains the worker pool.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping squad service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "squad service stopped")
}

// Resolve fills a scenario's zero fields with the service defaults.
func (s *Service) Resolve(sc model.Scenario) model.Scenario {
	if sc.Budget == 0 {
		sc.Budget = s.defaultBudget
	}
	if sc.Formation == "" {
		sc.Formation = s.defaultFormation
	}
	return sc
}

// Allocate builds one roster from the current market.
func (s *Service) Allocate(ctx context.Context, sc model.Scenario) (model.Roster, error) {
	sc = s.Resolve(sc)
	snap, err := s.source.Fetch(ctx)
	if err != nil {
		s.failures.Add(1)
		return model.Roster{}, err
	}

	roster, err := s.engine.Build(ctx, snap.Players, sc.Budget, sc.Formation)
	s.allocations.Add(1)
	if err != nil {
		s.failures.Add(1)
		return model.Roster{}, err
	}
	s.remember(ctx, roster)
	s.logger.Debug(ctx, "roster allocated",
		logger.String("roster_id", roster.ID),
		logger.String("formation", roster.Formation),
		logger.Int("filled", roster.Filled),
	)
	return roster, nil
}

// AllocateBatch builds one roster per scenario against a single market
// snapshot. Per-scenario failures are reported in the results; the error
// return covers the batch as a whole.
func (s *Service) AllocateBatch(ctx context.Context, scenarios []model.Scenario) ([]model.ScenarioResult, error) {
	switch {
	case len(scenarios) == 0:
		return nil, ErrEmptyBatch
	case len(scenarios) > s.maxBatchSize:
		return nil, fmt.Errorf("%w: %d scenarios, limit %d", ErrBatchTooLarge, len(scenarios), s.maxBatchSize)
	}

	s.mu.RLock()
	started, pool := s.started, s.pool
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	snap, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]model.Scenario, len(scenarios))
	for i, sc := range scenarios {
		resolved[i] = s.Resolve(sc)
	}

	s.batches.Add(1)
	s.scenarios.Add(int64(len(resolved)))
	results, err := pool.Run(ctx, snap.Players, resolved)
	for _, r := range results {
		s.allocations.Add(1)
		if r.Err != nil {
			s.failures.Add(1)
			continue
		}
		if r.Roster != nil {
			s.remember(ctx, *r.Roster)
		}
	}
	return results, err
}

// remember keeps a roster in the history. A failed save never fails the
// allocation.
func (s *Service) remember(ctx context.Context, r model.Roster) {
	if err := s.store.Save(ctx, r); err != nil {
		s.logger.Warn(ctx, "roster not stored",
			logger.String("roster_id", r.ID),
			logger.Error(err),
		)
	}
}

// Leaderboard returns the best n stored rosters by projected score.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.store.Top(ctx, n)
}

// Roster returns a stored roster by ID.
func (s *Service) Roster(ctx context.Context, id string) (model.Roster, error) {
	return s.store.Get(ctx, id)
}

// RosterRank returns the leaderboard row of a stored roster.
func (s *Service) RosterRank(ctx context.Context, id string) (repository.Entry, error) {
	return s.store.Rank(ctx, id)
}

// Players returns the current market narrowed by f, in feed order.
func (s *Service) Players(ctx context.Context, f PlayerFilter) (feed.Snapshot, error) {
	snap, err := s.source.Fetch(ctx)
	if err != nil {
		return feed.Snapshot{}, err
	}
	out := snap
	out.Players = make([]model.Player, 0, len(snap.Players))
	for _, p := range snap.Players {
		if f.match(p) {
			out.Players = append(out.Players, p)
		}
	}
	return out, nil
}

// Formations lists the accepted formations, sorted by name.
func (s *Service) Formations() []formation.Formation {
	return s.engine.Catalog().All()
}

// HasFormation reports whether name is in the engine's catalog.
func (s *Service) HasFormation(name string) bool {
	return s.engine.Catalog().Has(name)
}

// DefaultFormation returns the formation used for requests without one.
func (s *Service) DefaultFormation() string {
	return s.defaultFormation
}

// DefaultBudget returns the budget used for requests without one.
func (s *Service) DefaultBudget() float64 {
	return s.defaultBudget
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"maxBatchSize":     s.maxBatchSize,
		"defaultBudget":    s.defaultBudget,
		"defaultFormation": s.defaultFormation,
		"formations":       s.engine.Catalog().Names(),
		"allocations":      s.allocations.Load(),
		"failures":         s.failures.Load(),
		"batches":          s.batches.Load(),
		"scenarios":        s.scenarios.Load(),
		"storedRosters":    s.store.Count(context.Background()),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return stats
}
