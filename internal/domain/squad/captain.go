package squad

import (
	"github.com/okian/escala/internal/domain/model"
)

// selectCaptain returns the index of the non-coach entry with the highest
// elite score; the first one seen wins ties.
func selectCaptain(entries []model.RosterEntry) (int, error) {
	best := -1
	for i, e := range entries {
		if e.Candidate.Position == model.Coach {
			continue
		}
		if best < 0 || e.Candidate.Elite > entries[best].Candidate.Elite {
			best = i
		}
	}
	if best < 0 {
		return -1, ErrDegenerateSquad
	}
	return best, nil
}
