package squad

import (
	"sort"
)

// DefaultReservePerSlot is the budget held back for each slot still open
// after the current pick.
const DefaultReservePerSlot = 1.5

// allocate runs the budget-constrained greedy pass.
//
// Positions are visited in formation order. Within a position candidates
// are tried by elite score, highest first, ties in input order. A candidate
// is admitted only if its price still leaves reservePerSlot for every slot
// that would remain open afterwards.
func allocate(s *selection, reservePerSlot float64) {
	total := s.formation.Total()
	for _, q := range s.formation.Slots {
		ordered := append([]ranked(nil), s.remaining[q.Position]...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Elite > ordered[j].Elite
		})

		for _, c := range ordered {
			if s.shortfall(q.Position) <= 0 {
				break
			}
			reserve := float64(total-s.count-1) * reservePerSlot
			if s.cost+c.Price+reserve <= s.budget {
				s.admit(c, false)
			}
		}
	}
}
