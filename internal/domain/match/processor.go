package match

import (
	"math/rand"
	"time"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/rating"
)

// FinalWhistleText is appended once when the clock reaches full time.
const FinalWhistleText = "The referee blows the final whistle! What a match."

// Resolution records what happened to one frame event.
type Resolution struct {
	Event    model.FrameEvent
	Team     TeamResolution
	Player   PlayerResolution
	TeamID   string // resolved team, empty when discarded
	PlayerID string // resolved player, empty when discarded
}

// Applied reports whether the event was recorded on a player.
func (r Resolution) Applied() bool {
	return r.PlayerID != ""
}

// Outcome describes the effects of applying one frame.
type Outcome struct {
	ClockAdvanced        bool
	CommentaryAdded      bool
	CommentarySuppressed bool
	ScoreUpdated         bool
	Resolutions          []Resolution
	FinalWhistle         bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithRand sets the random source used for the player fallback.
func WithRand(r Rand) Option {
	return func(p *Processor) {
		if r != nil {
			p.rnd = r
		}
	}
}

// WithRules sets the rating rules.
func WithRules(r *rating.Rules) Option {
	return func(p *Processor) {
		if r != nil {
			p.rules = r
		}
	}
}

// Processor applies narrative frames to a State.
type Processor struct {
	rules *rating.Rules
	rnd   Rand
}

// NewProcessor creates a processor with default rating rules.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		rules: rating.NewRules(),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // decorative randomness
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply mutates s with the contents of f. Each part of the frame is applied
// independently; missing or malformed parts are skipped. A nil frame is a
// no-op.
func (p *Processor) Apply(s *State, f *model.Frame) Outcome {
	var out Outcome
	if f == nil {
		return out
	}

	if f.Minute != nil {
		out.ClockAdvanced = s.advanceClock(*f.Minute)
	}

	if f.Commentary != "" {
		kind := model.CommentaryNeutral
		if f.HasGoal() {
			kind = model.CommentaryGoal
		}
		if s.appendCommentary(model.CommentaryEntry{Minute: s.Clock, Text: f.Commentary, Type: kind}) {
			out.CommentaryAdded = true
		} else {
			out.CommentarySuppressed = true
		}
	}

	if sc := f.NewScore; sc != nil && sc.Home != nil && sc.Away != nil {
		s.Home.Score, s.Away.Score = *sc.Home, *sc.Away
		out.ScoreUpdated = true
	}

	for _, e := range f.Events {
		out.Resolutions = append(out.Resolutions, p.applyEvent(s, e))
	}

	if s.Clock >= FullTime && !s.Finished {
		s.Finished = true
		s.Playing = false
		s.Commentary = append(s.Commentary, model.CommentaryEntry{
			Minute: FullTime,
			Text:   FinalWhistleText,
			Type:   model.CommentaryHighlight,
		})
		out.FinalWhistle = true
	}
	return out
}

// advanceClock moves the clock to minute, never backwards and never past
// full time.
func (s *State) advanceClock(minute int) bool {
	minute = min(max(minute, s.Clock), FullTime)
	if minute == s.Clock {
		return false
	}
	s.Clock = minute
	return true
}

// appendCommentary adds e unless it repeats the last entry.
func (s *State) appendCommentary(e model.CommentaryEntry) bool {
	if n := len(s.Commentary); n > 0 {
		last := s.Commentary[n-1]
		if last.Minute == e.Minute && last.Text == e.Text {
			return false
		}
	}
	s.Commentary = append(s.Commentary, e)
	return true
}

func (p *Processor) applyEvent(s *State, e model.FrameEvent) Resolution {
	r := Resolution{Event: e, Player: PlayerNone}
	team, tr := s.resolveTeam(e.TeamID)
	r.Team = tr
	if team == nil || e.Type == "" {
		return r
	}
	r.TeamID = team.ID

	idx, pr := resolvePlayer(team, e.PlayerID, p.rnd)
	r.Player = pr
	if idx < 0 {
		return r
	}

	pl := &team.Players[idx]
	pl.Events = append(pl.Events, model.MatchEvent{Type: e.Type, Minute: s.Clock})
	pl.Rating = p.rules.Adjust(pl.Rating, e.Type)
	r.PlayerID = pl.ID
	return r
}
