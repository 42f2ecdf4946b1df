// Package squad assembles a twelve-piece fantasy roster from a scored
// player pool: a budget-aware greedy pass, a cheapest-first fill for any
// slot left open, captain selection and the summary projection.
package squad

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/okian/escala/internal/domain/formation"
	"github.com/okian/escala/internal/domain/model"
	"github.com/okian/escala/internal/domain/scoring"
	"github.com/okian/escala/pkg/logger"
	"github.com/okian/escala/pkg/metrics"
)

// Allocation outcomes reported to metrics.
const (
	outcomeComplete = "complete"
	outcomePartial  = "partial"
	outcomeError    = "error"
)

// unresolvedFormation labels failures for names outside the catalog.
const unresolvedFormation = "unknown"

// Engine builds rosters. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	catalog        *formation.Catalog
	calculator     *scoring.Calculator
	reservePerSlot float64
	newID          func() string
	logger         logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCatalog sets the formation catalog used to resolve names.
func WithCatalog(c *formation.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithCalculator sets the score calculator.
func WithCalculator(c *scoring.Calculator) Option {
	return func(e *Engine) {
		if c != nil {
			e.calculator = c
		}
	}
}

// WithReservePerSlot sets how much budget the greedy pass keeps back for
// each slot still open. Negative values are ignored.
func WithReservePerSlot(v float64) Option {
	return func(e *Engine) {
		if v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
			e.reservePerSlot = v
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator overrides how roster IDs are produced.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine returns an Engine with the preset formations, the default
// scoring rules and a reserve of DefaultReservePerSlot.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		catalog:        formation.Default(),
		calculator:     scoring.NewCalculator(),
		reservePerSlot: DefaultReservePerSlot,
		newID:          uuid.NewString,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the formation catalog the engine resolves names against.
func (e *Engine) Catalog() *formation.Catalog {
	return e.catalog
}

// Build selects a roster for the named formation within budget.
//
// Only players with status Probable are considered. The input slice is
// not modified. Slots that cannot be filled are left open and show up as
// Filled < Slots. When the greedy pass leaves slots open the cheapest
// remaining players are taken regardless of budget, so the result may be
// over budget; OverBudget reports that.
func (e *Engine) Build(ctx context.Context, players []model.Player, budget float64, formationName string) (model.Roster, error) {
	start := time.Now()

	if math.IsNaN(budget) || math.IsInf(budget, 0) || budget <= 0 {
		metrics.RecordAllocation(e.formationLabel(formationName), outcomeError)
		return model.Roster{}, fmt.Errorf("%w: %v", ErrInvalidBudget, budget)
	}
	f, err := e.catalog.Lookup(formationName)
	if err != nil {
		metrics.RecordAllocation(unresolvedFormation, outcomeError)
		return model.Roster{}, err
	}

	pool := make([]model.Candidate, 0, len(players))
	for _, p := range players {
		if p.Eligible() {
			pool = append(pool, e.calculator.Candidate(p))
		}
	}
	metrics.UpdateCandidatePoolSize(len(pool))

	s := newSelection(pool, f, budget)
	allocate(s, e.reservePerSlot)
	primary := s.count
	for pos, n := range fill(s) {
		for i := 0; i < n; i++ {
			metrics.RecordFallbackPick(pos.String())
		}
	}

	roster := model.Roster{
		ID:        e.newID(),
		Formation: f.Name,
		Budget:    budget,
		Entries:   s.entries(),
		Slots:     f.Total(),
	}

	captain, err := selectCaptain(roster.Entries)
	if err != nil {
		metrics.RecordCaptainFailure()
		metrics.RecordAllocation(f.Name, outcomeError)
		e.logger.Warn(ctx, "no captain candidate",
			logger.String("formation", f.Name),
			logger.Int("filled", len(roster.Entries)),
		)
		return model.Roster{}, err
	}
	project(&roster, captain)

	outcome := outcomeComplete
	if !roster.Complete() {
		outcome = outcomePartial
	}
	if roster.OverBudget {
		metrics.RecordBudgetOverrun()
	}
	metrics.RecordAllocation(f.Name, outcome)
	metrics.RecordRosterFilled(roster.Filled)
	metrics.RecordAllocationDuration(float64(time.Since(start).Microseconds()) / 1000)

	e.logger.Debug(ctx, "roster built",
		logger.String("roster_id", roster.ID),
		logger.String("formation", f.Name),
		logger.Int("pool", len(pool)),
		logger.Int("primary", primary),
		logger.Int("filled", roster.Filled),
		logger.Float64("cost", roster.TotalCost),
		logger.Bool("over_budget", roster.OverBudget),
	)
	return roster, nil
}

// formationLabel keeps metric labels within the catalog.
func (e *Engine) formationLabel(name string) string {
	if e.catalog.Has(name) {
		return name
	}
	return unresolvedFormation
}
