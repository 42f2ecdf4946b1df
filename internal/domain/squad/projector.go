package squad

import (
	"github.com/okian/escala/internal/domain/model"
)

// project fills the summary figures of r. The captain's average counts twice.
func project(r *model.Roster, captain int) {
	r.TotalCost = 0
	r.ProjectedScore = 0
	r.FallbackUsed = false
	for i := range r.Entries {
		e := &r.Entries[i]
		e.Captain = i == captain
		r.TotalCost += e.Candidate.Price
		r.ProjectedScore += e.Candidate.AverageScore
		if e.Fallback {
			r.FallbackUsed = true
		}
	}
	if captain >= 0 && captain < len(r.Entries) {
		c := r.Entries[captain].Candidate
		r.CaptainID = c.ID
		r.ProjectedScore += c.AverageScore
	}
	r.Filled = len(r.Entries)
	r.Balance = r.Budget - r.TotalCost
	r.OverBudget = r.TotalCost > r.Budget
}
