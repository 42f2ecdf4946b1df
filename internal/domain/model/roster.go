package model

import "errors"

// Sentinel errors for enum parsing.
var (
	ErrUnknownPosition = errors.New("unknown position")
	ErrUnknownStatus   = errors.New("unknown status")
)

// RosterEntry binds one formation slot to the player filling it.
type RosterEntry struct {
	Position         Position  `json:"slot"`
	Candidate        Candidate `json:"player"`
	Captain          bool      `json:"captain"`
	Fallback         bool      `json:"fallback"`
	HighAppreciation bool      `json:"high_appreciation"`
}

// Roster is the result of one allocation run.
type Roster struct {
	ID             string        `json:"id"`
	Formation      string        `json:"formation"`
	Budget         float64       `json:"budget"`
	Entries        []RosterEntry `json:"entries"`
	CaptainID      int           `json:"captain_id"`
	TotalCost      float64       `json:"total_cost"`
	ProjectedScore float64       `json:"projected_score"`
	Balance        float64       `json:"balance"`
	OverBudget     bool          `json:"over_budget"`
	Filled         int           `json:"filled"`
	Slots          int           `json:"slots"`
	FallbackUsed   bool          `json:"fallback_used"`
}

// Complete reports whether every formation slot was filled.
func (r Roster) Complete() bool {
	return r.Slots > 0 && r.Filled == r.Slots
}

// Captain returns the captain entry, if any.
func (r Roster) Captain() (RosterEntry, bool) {
	for _, e := range r.Entries {
		if e.Captain {
			return e, true
		}
	}
	return RosterEntry{}, false
}

// CountByPosition returns how many entries fill each position.
func (r Roster) CountByPosition() map[Position]int {
	out := make(map[Position]int, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Position]++
	}
	return out
}
