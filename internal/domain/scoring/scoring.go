// Package scoring ranks players by value for money.
//
// The base signal is the cost-benefit score, averageScore / (price + 0.1).
// The elite score multiplies it by every matching Rule, in order.
package scoring

import (
	"github.com/okian/escala/internal/domain/model"
)

// priceOffset keeps free players from dividing by zero.
const priceOffset = 0.1

// Default rule multipliers.
const (
	DefensiveHomeBoost   = 1.20
	DefensiveAwayPenalty = 0.80
	LowSamplePenalty     = 0.85
	MinGamesPlayed       = 3
)

// Rule is a single multiplicative adjustment.
type Rule struct {
	Name       string
	Applies    func(model.Player) bool
	Multiplier float64
}

// DefaultRules returns the venue and volatility adjustments.
//
// The venue rules treat anything that is not a confirmed home fixture as
// away, including players whose club has no fixture in the feed.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "defensive_home",
			Applies: func(p model.Player) bool {
				return p.Position.IsDefensive() && p.Venue == model.Home
			},
			Multiplier: DefensiveHomeBoost,
		},
		{
			Name: "defensive_not_home",
			Applies: func(p model.Player) bool {
				return p.Position.IsDefensive() && p.Venue != model.Home
			},
			Multiplier: DefensiveAwayPenalty,
		},
		{
			Name: "low_sample",
			Applies: func(p model.Player) bool {
				return p.GamesPlayed < MinGamesPlayed
			},
			Multiplier: LowSamplePenalty,
		},
	}
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithRules replaces the rule list.
func WithRules(rules []Rule) Option {
	return func(c *Calculator) {
		c.rules = append([]Rule(nil), rules...)
	}
}

// WithExtraRules appends rules after the current ones.
func WithExtraRules(rules ...Rule) Option {
	return func(c *Calculator) {
		c.rules = append(c.rules, rules...)
	}
}

// Calculator derives candidate scores. It holds no mutable state after
// construction and is safe for concurrent use.
type Calculator struct {
	rules []Rule
}

// NewCalculator creates a calculator with DefaultRules.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{rules: DefaultRules()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns a copy of the configured rules.
func (c *Calculator) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// CostBenefit returns averageScore / (price + 0.1).
func CostBenefit(p model.Player) float64 {
	return p.AverageScore / (p.Price + priceOffset)
}

// Elite applies every matching rule to the cost-benefit score.
func (c *Calculator) Elite(p model.Player) float64 {
	score := CostBenefit(p)
	for _, r := range c.rules {
		if r.Applies != nil && r.Applies(p) {
			score *= r.Multiplier
		}
	}
	return score
}

// Candidate scores a single player.
func (c *Calculator) Candidate(p model.Player) model.Candidate {
	return model.Candidate{
		Player:      p,
		CostBenefit: CostBenefit(p),
		Elite:       c.Elite(p),
	}
}

// Candidates scores players, preserving input order.
func (c *Calculator) Candidates(players []model.Player) []model.Candidate {
	out := make([]model.Candidate, len(players))
	for i, p := range players {
		out[i] = c.Candidate(p)
	}
	return out
}
