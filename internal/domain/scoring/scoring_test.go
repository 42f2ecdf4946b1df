package scoring_test

import (
	"testing"

	"github.com/okian/escala/internal/domain/model"
	scoring "github.com/okian/escala/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const epsilon = 1e-9

func defender(venue model.Venue, games int) model.Player {
	return model.Player{
		ID:           1,
		Position:     model.CenterBack,
		Price:        9.9,
		AverageScore: 5,
		GamesPlayed:  games,
		Status:       model.Probable,
		Venue:        venue,
	}
}

func TestCostBenefit(t *testing.T) {
	Convey("Given a player with price and average", t, func() {
		p := model.Player{Price: 9.9, AverageScore: 5}

		Convey("Then cost-benefit is average / (price + 0.1)", func() {
			So(scoring.CostBenefit(p), ShouldAlmostEqual, 0.5, epsilon)
		})

		Convey("When the player is free", func() {
			free := model.Player{Price: 0, AverageScore: 1}
			So(scoring.CostBenefit(free), ShouldAlmostEqual, 10.0, epsilon)
		})

		Convey("When the average is missing", func() {
			So(scoring.CostBenefit(model.Player{Price: 3}), ShouldEqual, 0)
		})
	})
}

func TestCalculator_Elite(t *testing.T) {
	Convey("Given the default calculator", t, func() {
		calc := scoring.NewCalculator()

		Convey("When a defender plays at home with enough games", func() {
			So(calc.Elite(defender(model.Home, 5)), ShouldAlmostEqual, 0.5*1.2, epsilon)
		})

		Convey("When a defender plays away", func() {
			So(calc.Elite(defender(model.Away, 5)), ShouldAlmostEqual, 0.5*0.8, epsilon)
		})

		Convey("When a defender has no fixture data", func() {
			Convey("Then it is treated exactly like away", func() {
				So(calc.Elite(defender(model.VenueUnknown, 5)), ShouldEqual, calc.Elite(defender(model.Away, 5)))
			})
		})

		Convey("When comparing home and away defenders", func() {
			home := calc.Elite(defender(model.Home, 5))
			away := calc.Elite(defender(model.Away, 5))

			Convey("Then home is 1.5x away", func() {
				So(home/away, ShouldAlmostEqual, 1.5, epsilon)
			})
		})

		Convey("When a player has fewer than three games", func() {
			few := calc.Elite(defender(model.Home, 2))
			many := calc.Elite(defender(model.Home, 5))

			Convey("Then the score is 0.85x the established player", func() {
				So(few/many, ShouldAlmostEqual, 0.85, epsilon)
			})

			Convey("And exactly three games is not penalised", func() {
				So(calc.Elite(defender(model.Home, 3)), ShouldEqual, many)
			})
		})

		Convey("When an attacker changes venue", func() {
			fwd := model.Player{Position: model.Forward, Price: 9.9, AverageScore: 5, GamesPlayed: 5}
			home, away := fwd, fwd
			home.Venue = model.Home
			away.Venue = model.Away

			Convey("Then venue has no effect", func() {
				So(calc.Elite(home), ShouldEqual, calc.Elite(away))
				So(calc.Elite(home), ShouldAlmostEqual, 0.5, epsilon)
			})
		})

		Convey("When all adjustments stack", func() {
			So(calc.Elite(defender(model.Away, 1)), ShouldAlmostEqual, 0.5*0.8*0.85, epsilon)
		})
	})
}

func TestCalculator_Options(t *testing.T) {
	Convey("Given custom rules", t, func() {
		Convey("When an extra rule is appended", func() {
			calc := scoring.NewCalculator(scoring.WithExtraRules(scoring.Rule{
				Name:       "captain_material",
				Applies:    func(p model.Player) bool { return p.AverageScore > 8 },
				Multiplier: 2,
			}))

			Convey("Then it applies after the defaults", func() {
				p := model.Player{Position: model.Forward, Price: 9.9, AverageScore: 10, GamesPlayed: 1}
				So(calc.Elite(p), ShouldAlmostEqual, 1.0*0.85*2, epsilon)
				So(len(calc.Rules()), ShouldEqual, 4)
			})
		})

		Convey("When the rules are replaced with none", func() {
			calc := scoring.NewCalculator(scoring.WithRules(nil))

			Convey("Then elite equals cost-benefit", func() {
				p := defender(model.Away, 1)
				So(calc.Elite(p), ShouldEqual, scoring.CostBenefit(p))
			})
		})

		Convey("When a rule has no predicate", func() {
			calc := scoring.NewCalculator(scoring.WithRules([]scoring.Rule{{Name: "broken", Multiplier: 0}}))

			Convey("Then it is skipped", func() {
				p := defender(model.Home, 5)
				So(calc.Elite(p), ShouldEqual, scoring.CostBenefit(p))
			})
		})
	})
}

func TestCalculator_Candidates(t *testing.T) {
	Convey("Given several players", t, func() {
		calc := scoring.NewCalculator()
		players := []model.Player{
			{ID: 3, Position: model.Forward, Price: 4.9, AverageScore: 5, GamesPlayed: 5},
			{ID: 1, Position: model.Goalkeeper, Price: 9.9, AverageScore: 5, GamesPlayed: 5, Venue: model.Home},
		}

		Convey("When scoring them", func() {
			cands := calc.Candidates(players)

			Convey("Then order and identity are preserved", func() {
				So(len(cands), ShouldEqual, 2)
				So(cands[0].ID, ShouldEqual, 3)
				So(cands[1].ID, ShouldEqual, 1)
				So(cands[0].CostBenefit, ShouldAlmostEqual, 1.0, epsilon)
				So(cands[1].Elite, ShouldAlmostEqual, 0.6, epsilon)
			})
		})
	})
}
