// Package animation moves the ball and the players between narrative frames.
// Nothing here affects the score or the commentary.
package animation

import (
	"math"
	"math/rand"
	"time"

	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/internal/domain/model"
)

// Ball and drift tuning.
const (
	ballSpeedFactor   = 1.5
	arcPeak           = 5.0
	arcMidDistance    = 15.0
	arrivalDistance   = 1.0
	heldOffset        = 1.0
	passProbability   = 0.05
	interceptChance   = 0.1
	driftAmplitude    = 2.0
	driftAngularSpeed = 0.002
	driftPhasePerNum  = 100.0
)

// Transition names what the ball did during a step.
type Transition string

// Ball transitions.
const (
	Flying      Transition = "flying"
	Arrived     Transition = "arrived"
	Held        Transition = "held"
	Passed      Transition = "passed"
	Intercepted Transition = "intercepted"
	Kickoff     Transition = "kickoff"
	TargetLost  Transition = "target_lost"
	OwnerLost   Transition = "owner_lost"
)

// Option configures an Animator.
type Option func(*Animator)

// WithRand sets the random source for pass and interception draws.
func WithRand(r match.Rand) Option {
	return func(a *Animator) {
		if r != nil {
			a.rnd = r
		}
	}
}

// Animator advances ball and player positions.
type Animator struct {
	rnd match.Rand
}

// New creates an Animator.
func New(opts ...Option) *Animator {
	a := &Animator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // decorative randomness
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Step runs one animation tick: ball first, then player drift.
func (a *Animator) Step(s *match.State, now time.Time) Transition {
	t := a.StepBall(s)
	Drift(s, now)
	return t
}

// StepBall advances the ball state machine by one tick.
func (a *Animator) StepBall(s *match.State) Transition {
	b := &s.Ball
	switch {
	case b.TargetID != "":
		return stepFlight(s)
	case b.OwnerID != "":
		return a.stepHeld(s)
	default:
		if len(s.Home.Players) == 0 {
			return Held
		}
		b.TargetID = s.Home.Players[0].ID
		return Kickoff
	}
}

func stepFlight(s *match.State) Transition {
	b := &s.Ball
	team, idx, ok := s.FindPlayer(b.TargetID)
	if !ok {
		b.TargetID = ""
		return TargetLost
	}
	target := team.Players[idx].Position

	dx, dy := target.X-b.X, target.Y-b.Y
	dist := math.Hypot(dx, dy)
	speed := ballSpeedFactor * s.Speed
	if dist <= speed || dist < arrivalDistance {
		b.X, b.Y = target.X, target.Y
		b.Height = 0
		b.OwnerID = b.TargetID
		b.TargetID = ""
		s.Possession = team.ID
		return Arrived
	}

	b.X = clampPitch(b.X + dx/dist*speed)
	b.Y = clampPitch(b.Y + dy/dist*speed)
	b.Height = math.Max(0, arcPeak-math.Abs(dist-arcMidDistance)/2)
	return Flying
}

func (a *Animator) stepHeld(s *match.State) Transition {
	b := &s.Ball
	team, idx, ok := s.FindPlayer(b.OwnerID)
	if !ok {
		b.OwnerID = ""
		return OwnerLost
	}
	owner := team.Players[idx]
	b.X = clampPitch(owner.Position.X + heldOffset)
	b.Y = clampPitch(owner.Position.Y + heldOffset)
	b.Height = 0

	if a.rnd.Float64() >= passProbability*s.Speed {
		return Held
	}
	mates := teammates(team, owner.ID)
	if len(mates) == 0 {
		return Held
	}
	b.TargetID = mates[a.rnd.Intn(len(mates))].ID
	b.OwnerID = ""

	opp := s.Opponent(team)
	if a.rnd.Float64() < interceptChance && len(opp.Players) > 0 {
		b.TargetID = opp.Players[a.rnd.Intn(len(opp.Players))].ID
		s.Possession = opp.ID
		return Intercepted
	}
	return Passed
}

func teammates(t *model.Team, ownerID string) []model.Player {
	out := make([]model.Player, 0, len(t.Players))
	for _, p := range t.Players {
		if p.ID != ownerID {
			out = append(out, p)
		}
	}
	return out
}

// Drift places every player on a small circle around their formation
// anchor. The phase depends on the shirt number and the wall clock.
func Drift(s *match.State, now time.Time) {
	ms := float64(now.UnixMilli())
	w := driftAngularSpeed * s.Speed
	for _, t := range s.Teams() {
		for i := range t.Players {
			p := &t.Players[i]
			phase := ms*w + float64(p.Number)*driftPhasePerNum
			p.Position = model.Position{
				X: clampPitch(p.Base.X + math.Sin(phase)*driftAmplitude),
				Y: clampPitch(p.Base.Y + math.Cos(phase)*driftAmplitude),
			}
		}
	}
}

func clampPitch(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
