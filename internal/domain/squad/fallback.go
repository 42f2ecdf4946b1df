package squad

import (
	"sort"

	"github.com/okian/escala/internal/domain/model"
)

// fill completes every position the greedy pass left short, cheapest
// remaining candidate first, without looking at the budget. The cost may
// end above budget; callers see that in the roster totals.
func fill(s *selection) map[model.Position]int {
	added := make(map[model.Position]int)
	for _, q := range s.formation.Slots {
		short := s.shortfall(q.Position)
		if short <= 0 {
			continue
		}
		cheapest := append([]ranked(nil), s.remaining[q.Position]...)
		sort.SliceStable(cheapest, func(i, j int) bool {
			return cheapest[i].Price < cheapest[j].Price
		})
		for _, c := range cheapest {
			if short == 0 {
				break
			}
			s.admit(c, true)
			added[q.Position]++
			short--
		}
	}
	return added
}
