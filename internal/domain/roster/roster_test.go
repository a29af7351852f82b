package roster_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/roster"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the built-in fixture", t, func() {
		f := roster.Default()

		Convey("Then it is valid with eleven players per side", func() {
			So(f.Validate(), ShouldBeNil)
			So(f.Home.ID, ShouldEqual, roster.HomeTeamID)
			So(f.Away.ID, ShouldEqual, roster.AwayTeamID)
			So(f.Home.Players, ShouldHaveLength, 11)
			So(f.Away.Players, ShouldHaveLength, 11)
		})

		Convey("Then every player is anchored at its formation position", func() {
			for _, p := range append(f.Home.Players, f.Away.Players...) {
				So(p.Base, ShouldResemble, p.Position)
			}
		})

		Convey("Then each call returns an independent copy", func() {
			f.Home.Players[0].Rating = 1
			So(roster.Default().Home.Players[0].Rating, ShouldEqual, 7.2)
		})
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty roster path", t, func() {
		f, err := roster.Load(ctx, "")

		Convey("Then the built-in fixture is returned", func() {
			So(err, ShouldBeNil)
			So(f.Home.Name, ShouldEqual, "RB Leipzig")
		})
	})

	Convey("Given a YAML roster file", t, func() {
		path := writeTemp(`
home:
  id: ajax
  name: Ajax
  players:
    - {id: j1, name: Keeper, number: 1, role: GK, position: {x: 8, y: 50}, rating: 6.5}
    - {id: j2, name: Striker, number: 9, role: FWD, position: {x: 70, y: 50}, rating: 14}
away:
  id: psv
  name: PSV
  players:
    - {id: p1, name: Keeper, number: 1, role: GK, position: {x: 92, y: 50}, rating: 7}
`)
		defer func() { _ = os.Remove(path) }()

		f, err := roster.Load(ctx, path)

		Convey("Then the teams are loaded and normalized", func() {
			So(err, ShouldBeNil)
			So(f.Home.ID, ShouldEqual, "ajax")
			So(f.Home.Players, ShouldHaveLength, 2)
			So(f.Home.Players[1].Base.X, ShouldEqual, 70.0)
			So(f.Home.Players[1].Rating, ShouldEqual, 10.0)
			So(f.Away.Players[0].Role, ShouldEqual, model.RoleGoalkeeper)
		})
	})

	Convey("Given a roster with duplicate player ids", t, func() {
		path := writeTemp(`
home: {id: a, players: [{id: x, position: {x: 1, y: 1}}, {id: x, position: {x: 2, y: 2}}]}
away: {id: b, players: [{id: y, position: {x: 1, y: 1}}]}
`)
		defer func() { _ = os.Remove(path) }()

		_, err := roster.Load(ctx, path)

		Convey("Then it is rejected", func() {
			So(errors.Is(err, roster.ErrInvalidRoster), ShouldBeTrue)
		})
	})

	Convey("Given teams sharing an id", t, func() {
		path := writeTemp(`
home: {id: same, players: [{id: x, position: {x: 1, y: 1}}]}
away: {id: same, players: [{id: y, position: {x: 1, y: 1}}]}
`)
		defer func() { _ = os.Remove(path) }()

		_, err := roster.Load(ctx, path)

		Convey("Then it is rejected", func() {
			So(errors.Is(err, roster.ErrInvalidRoster), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := roster.Load(ctx, "/no/such/roster.yaml")

		Convey("Then a load error is returned", func() {
			So(errors.Is(err, roster.ErrLoadRoster), ShouldBeTrue)
		})
	})
}

func writeTemp(content string) string {
	f, err := os.CreateTemp("", "kickoff-roster-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	return f.Name()
}
