// Package rating defines how match events move a player's rating.
package rating

import (
	"math"

	"github.com/okian/kickoff/internal/domain/model"
)

// Rating bounds and default adjustments.
const (
	MinRating = 1.0
	MaxRating = 10.0

	defaultGoalBonus     = 1.5
	defaultYellowPenalty = 0.5
	defaultYellowFloor   = 3.0
	defaultRedPenalty    = 2.0
	defaultRedFloor      = MinRating
)

// Option applies a configuration option to the Rules.
type Option func(*Rules)

// WithGoalBonus sets the rating gained per goal.
func WithGoalBonus(bonus float64) Option {
	return func(r *Rules) {
		if bonus >= 0 {
			r.goalBonus = bonus
		}
	}
}

// WithYellowCard sets the penalty and floor applied for a yellow card.
func WithYellowCard(penalty, floor float64) Option {
	return func(r *Rules) {
		if penalty >= 0 && floor >= MinRating && floor <= MaxRating {
			r.yellowPenalty = penalty
			r.yellowFloor = floor
		}
	}
}

// WithRedCard sets the penalty and floor applied for a red card.
func WithRedCard(penalty, floor float64) Option {
	return func(r *Rules) {
		if penalty >= 0 && floor >= MinRating && floor <= MaxRating {
			r.redPenalty = penalty
			r.redFloor = floor
		}
	}
}

// Rules maps event types to rating changes.
type Rules struct {
	goalBonus     float64
	yellowPenalty float64
	yellowFloor   float64
	redPenalty    float64
	redFloor      float64
}

// NewRules creates rating rules with the default adjustments:
// goal +1.5 (cap 10), yellow -0.5 (floor 3), red -2.0 (floor 1).
func NewRules(opts ...Option) *Rules {
	r := &Rules{
		goalBonus:     defaultGoalBonus,
		yellowPenalty: defaultYellowPenalty,
		yellowFloor:   defaultYellowFloor,
		redPenalty:    defaultRedPenalty,
		redFloor:      defaultRedFloor,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Adjust returns the rating after an event of the given type. Event types
// without a rating effect leave the rating unchanged. The result always lies
// in [MinRating, MaxRating].
func (r *Rules) Adjust(current float64, t model.EventType) float64 {
	next := current
	switch t {
	case model.EventGoal:
		next = math.Min(MaxRating, current+r.goalBonus)
	case model.EventYellowCard:
		next = math.Max(r.yellowFloor, current-r.yellowPenalty)
	case model.EventRedCard:
		next = math.Max(r.redFloor, current-r.redPenalty)
	}
	return Clamp(next)
}

// Clamp bounds a rating to [MinRating, MaxRating].
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinRating
	}
	return math.Max(MinRating, math.Min(MaxRating, v))
}
