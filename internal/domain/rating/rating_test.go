package rating_test

import (
	"math/rand"
	"testing"

	"github.com/okian/kickoff/internal/domain/model"
	rating "github.com/okian/kickoff/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRules_Adjust(t *testing.T) {
	Convey("Given the default rating rules", t, func() {
		rules := rating.NewRules()

		Convey("When a player scores", func() {
			Convey("Then the rating rises by 1.5", func() {
				So(rules.Adjust(7.8, model.EventGoal), ShouldAlmostEqual, 9.3, 1e-9)
			})

			Convey("And it is capped at 10", func() {
				So(rules.Adjust(9.2, model.EventGoal), ShouldEqual, 10.0)
			})
		})

		Convey("When a player is booked", func() {
			Convey("Then the rating drops by 0.5", func() {
				So(rules.Adjust(7.0, model.EventYellowCard), ShouldEqual, 6.5)
			})

			Convey("And it never drops below 3", func() {
				So(rules.Adjust(3.2, model.EventYellowCard), ShouldEqual, 3.0)
			})
		})

		Convey("When a player is sent off", func() {
			Convey("Then the rating drops by 2", func() {
				So(rules.Adjust(7.0, model.EventRedCard), ShouldEqual, 5.0)
			})

			Convey("And it never drops below 1", func() {
				So(rules.Adjust(2.0, model.EventRedCard), ShouldEqual, 1.0)
			})
		})

		Convey("When the event carries no rating effect", func() {
			Convey("Then the rating is unchanged", func() {
				So(rules.Adjust(6.4, model.EventSubIn), ShouldEqual, 6.4)
				So(rules.Adjust(6.4, model.EventType("corner")), ShouldEqual, 6.4)
			})
		})

		Convey("When applying long random event sequences", func() {
			rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic sequence
			types := []model.EventType{model.EventGoal, model.EventYellowCard, model.EventRedCard, model.EventSubOut}

			Convey("Then the rating always stays within [1, 10]", func() {
				for seq := 0; seq < 200; seq++ {
					r := 1 + rng.Float64()*9
					for i := 0; i < 50; i++ {
						r = rules.Adjust(r, types[rng.Intn(len(types))])
						So(r, ShouldBeBetweenOrEqual, rating.MinRating, rating.MaxRating)
					}
				}
			})
		})
	})

	Convey("Given custom rules", t, func() {
		rules := rating.NewRules(
			rating.WithGoalBonus(3),
			rating.WithYellowCard(1, 4),
			rating.WithRedCard(5, 2),
		)

		Convey("Then the custom adjustments apply", func() {
			So(rules.Adjust(5, model.EventGoal), ShouldEqual, 8.0)
			So(rules.Adjust(4.5, model.EventYellowCard), ShouldEqual, 4.0)
			So(rules.Adjust(6, model.EventRedCard), ShouldEqual, 2.0)
		})
	})

	Convey("Given invalid options", t, func() {
		rules := rating.NewRules(rating.WithGoalBonus(-1), rating.WithRedCard(1, 0))

		Convey("Then the defaults are kept", func() {
			So(rules.Adjust(5, model.EventGoal), ShouldEqual, 6.5)
			So(rules.Adjust(2, model.EventRedCard), ShouldEqual, 1.0)
		})
	})
}

func TestClamp(t *testing.T) {
	Convey("Given out of range ratings", t, func() {
		Convey("Then they are clamped", func() {
			So(rating.Clamp(12), ShouldEqual, 10.0)
			So(rating.Clamp(-3), ShouldEqual, 1.0)
			So(rating.Clamp(5.5), ShouldEqual, 5.5)
		})
	})
}
