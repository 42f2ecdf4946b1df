package squad

import (
	"github.com/okian/escala/internal/domain/formation"
	"github.com/okian/escala/internal/domain/model"
)

// ranked is a candidate plus its position in the caller's input, used for
// stable tie-breaks.
type ranked struct {
	order int
	model.Candidate
}

type pick struct {
	ranked
	fallback bool
}

// selection is the mutable state of one allocation run.
type selection struct {
	formation formation.Formation
	budget    float64
	cost      float64
	count     int

	picks     map[model.Position][]pick
	remaining map[model.Position][]ranked // unselected, input order
}

// newSelection groups the pool by position. Candidates for positions the
// formation does not use are dropped.
func newSelection(pool []model.Candidate, f formation.Formation, budget float64) *selection {
	s := &selection{
		formation: f,
		budget:    budget,
		picks:     make(map[model.Position][]pick, len(f.Slots)),
		remaining: make(map[model.Position][]ranked, len(f.Slots)),
	}
	for i, c := range pool {
		if f.Count(c.Position) == 0 {
			continue
		}
		s.remaining[c.Position] = append(s.remaining[c.Position], ranked{order: i, Candidate: c})
	}
	return s
}

func (s *selection) shortfall(p model.Position) int {
	return s.formation.Count(p) - len(s.picks[p])
}

// admit moves r from the pool into the squad.
func (s *selection) admit(r ranked, fallback bool) {
	s.picks[r.Position] = append(s.picks[r.Position], pick{ranked: r, fallback: fallback})
	s.cost += r.Price
	s.count++

	rest := make([]ranked, 0, len(s.remaining[r.Position]))
	for _, c := range s.remaining[r.Position] {
		if c.order != r.order {
			rest = append(rest, c)
		}
	}
	s.remaining[r.Position] = rest
}

// entries lists picks in formation order; within a position primary picks
// come first, each group in admission order.
func (s *selection) entries() []model.RosterEntry {
	out := make([]model.RosterEntry, 0, s.count)
	for _, q := range s.formation.Slots {
		for _, fallback := range []bool{false, true} {
			for _, p := range s.picks[q.Position] {
				if p.fallback != fallback {
					continue
				}
				out = append(out, model.RosterEntry{
					Position:         q.Position,
					Candidate:        p.Candidate,
					Fallback:         p.fallback,
					HighAppreciation: p.HighAppreciation(),
				})
			}
		}
	}
	return out
}
