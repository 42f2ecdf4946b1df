// Package repository keeps generated rosters ranked by projected score.
package repository

import (
	"context"
	"time"

	"github.com/okian/escala/internal/domain/model"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank           int       `json:"rank"`
	RosterID       string    `json:"roster_id"`
	Formation      string    `json:"formation"`
	Budget         float64   `json:"budget"`
	ProjectedScore float64   `json:"projected_score"`
	TotalCost      float64   `json:"total_cost"`
	Filled         int       `json:"filled"`
	Slots          int       `json:"slots"`
	SavedAt        time.Time `json:"saved_at"`
}

// Store provides read/write access to the roster history.
type Store interface {
	// Save records a roster. Saving an existing ID replaces it.
	Save(ctx context.Context, r model.Roster) error

	// Get returns a stored roster.
	// Returns ErrNotFound if the roster is unknown or was evicted.
	Get(ctx context.Context, id string) (model.Roster, error)

	// Rank returns the leaderboard row of a stored roster.
	Rank(ctx context.Context, id string) (Entry, error)

	// Top returns the best n rosters ordered by projected score desc.
	Top(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of rosters held.
	Count(ctx context.Context) int
}
