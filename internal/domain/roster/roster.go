// Package roster provides the two squads a match starts with.
package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/rating"
)

// Sentinel errors for roster loading.
var (
	ErrLoadRoster    = errors.New("load roster failed")
	ErrInvalidRoster = errors.New("invalid roster")
)

// Fixture is the pair of teams taking part in a match.
type Fixture struct {
	Home model.Team `json:"home"`
	Away model.Team `json:"away"`
}

// Load reads a YAML fixture file. An empty path returns Default().
func Load(_ context.Context, path string) (Fixture, error) {
	if path == "" {
		return Default(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Fixture{}, fmt.Errorf("%w: %s: %w", ErrLoadRoster, path, err)
	}

	var f Fixture
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return Fixture{}, fmt.Errorf("%w: %s: %w", ErrLoadRoster, path, err)
	}

	prepare(&f.Home)
	prepare(&f.Away)
	if err := f.Validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// prepare anchors drift at the configured position and normalizes ratings.
func prepare(t *model.Team) {
	for i := range t.Players {
		p := &t.Players[i]
		p.Base = p.Position
		p.Rating = rating.Clamp(p.Rating)
		p.Events = nil
	}
}

// Validate checks the team and player identity invariants.
func (f Fixture) Validate() error {
	if f.Home.ID == "" || f.Away.ID == "" {
		return fmt.Errorf("%w: both teams need an id", ErrInvalidRoster)
	}
	if f.Home.ID == f.Away.ID {
		return fmt.Errorf("%w: home and away share id %q", ErrInvalidRoster, f.Home.ID)
	}
	for _, t := range []model.Team{f.Home, f.Away} {
		if len(t.Players) == 0 {
			return fmt.Errorf("%w: team %q has no players", ErrInvalidRoster, t.ID)
		}
		seen := make(map[string]struct{}, len(t.Players))
		for _, p := range t.Players {
			if p.ID == "" {
				return fmt.Errorf("%w: team %q has a player without id", ErrInvalidRoster, t.ID)
			}
			if _, dup := seen[p.ID]; dup {
				return fmt.Errorf("%w: team %q repeats player id %q", ErrInvalidRoster, t.ID, p.ID)
			}
			seen[p.ID] = struct{}{}
			if !onPitch(p.Base) {
				return fmt.Errorf("%w: player %q is off the pitch", ErrInvalidRoster, p.ID)
			}
		}
	}
	return nil
}

func onPitch(p model.Position) bool {
	return p.X >= 0 && p.X <= 100 && p.Y >= 0 && p.Y <= 100
}
