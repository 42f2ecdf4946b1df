// Package feed fetches the player market from the upstream fantasy API and
// turns it into model.Player records.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/okian/escala/internal/domain/model"
)

// Sentinel errors for this package.
var (
	ErrUpstream   = errors.New("upstream feed failure")
	ErrCacheEntry = errors.New("corrupt cache entry")
)

// Snapshot is one normalized read of the market.
type Snapshot struct {
	Players    []model.Player `json:"players"`
	MarketOpen bool           `json:"market_open"`
	FetchedAt  time.Time      `json:"fetched_at"`
}

// Source produces market snapshots.
type Source interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Snapshot, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) (Snapshot, error) { return f(ctx) }

// Static returns a Source that always yields s.
func Static(s Snapshot) Source {
	return SourceFunc(func(context.Context) (Snapshot, error) { return s, nil })
}
