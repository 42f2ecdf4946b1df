package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/okian/escala/internal/domain/model"
)

const captainMark = "(C)"

// Render prints the roster as an aligned table followed by a summary line.
func Render(w io.Writer, r model.Roster) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNICKNAME\tPOS\tCLUB\tVENUE\tOPPONENT\tPRICE\tAVG\tGAMES\tAPPRECIATION")
	for _, e := range r.Entries {
		c := e.Candidate
		mark := ""
		if e.Captain {
			mark = captainMark
		}
		trend := "down"
		if e.HighAppreciation {
			trend = "up"
		}
		if e.Fallback {
			trend += " (fallback)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%d\t%s\n",
			mark, c.Nickname, e.Position, dash(c.Club), c.Venue, dash(c.Opponent),
			c.Price, c.AverageScore, c.GamesPlayed, trend)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Summary(r))
	return err
}

// Summary is the one-line roster digest.
func Summary(r model.Roster) string {
	s := fmt.Sprintf("%s  pieces %d/%d  cost %.2f  balance %.2f  projected %.2f",
		r.Formation, r.Filled, r.Slots, r.TotalCost, r.Balance, r.ProjectedScore)
	if r.OverBudget {
		s += "  OVER BUDGET"
	}
	return s
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
