// Package match owns the match state and the rules that advance it.
package match

import (
	"github.com/okian/kickoff/internal/domain/model"
)

// FullTime is the last minute of a match.
const FullTime = 90

// Rand is the source of randomness used by the match rules.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// State is the single mutable match state. It is owned by one goroutine;
// readers receive copies through Snapshot.
type State struct {
	ID         string
	Home       model.Team
	Away       model.Team
	Ball       model.Ball
	Possession string // team id currently attributed the ball
	Clock      int
	Commentary []model.CommentaryEntry
	Playing    bool
	Is3D       bool
	Speed      float64
	Finished   bool
}

// New creates a state for a fresh match between home and away.
func New(id string, home, away model.Team, speed float64) *State {
	s := &State{
		ID:         id,
		Home:       home.Clone(),
		Away:       away.Clone(),
		Ball:       model.Ball{X: 50, Y: 50},
		Possession: home.ID,
		Speed:      speed,
	}
	s.Home.Score, s.Away.Score = 0, 0
	return s
}

// Teams returns pointers to both teams, home first.
func (s *State) Teams() [2]*model.Team {
	return [2]*model.Team{&s.Home, &s.Away}
}

// FindPlayer locates a player by id on either team.
func (s *State) FindPlayer(id string) (*model.Team, int, bool) {
	if id == "" {
		return nil, -1, false
	}
	for _, t := range s.Teams() {
		if i, ok := t.PlayerIndex(id); ok {
			return t, i, true
		}
	}
	return nil, -1, false
}

// Opponent returns the team facing t.
func (s *State) Opponent(t *model.Team) *model.Team {
	if t == &s.Home {
		return &s.Away
	}
	return &s.Home
}

// Snapshot is a read-only copy of the match for presentation.
type Snapshot struct {
	ID            string                  `json:"id"`
	Home          model.Team              `json:"home"`
	Away          model.Team              `json:"away"`
	Ball          model.Ball              `json:"ball"`
	Possession    string                  `json:"possession"`
	Minute        int                     `json:"minute"`
	Commentary    []model.CommentaryEntry `json:"commentary"`
	Playing       bool                    `json:"playing"`
	Is3D          bool                    `json:"is3D"`
	Speed         float64                 `json:"speed"`
	Finished      bool                    `json:"finished"`
	HasCredential bool                    `json:"hasCredential"`
	BufferDepth   int                     `json:"bufferDepth"`
	FetchedUpTo   int                     `json:"fetchedUpTo"`
}

// Snapshot deep-copies the state. Pipeline fields are filled in by the owner.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		ID:         s.ID,
		Home:       s.Home.Clone(),
		Away:       s.Away.Clone(),
		Ball:       s.Ball,
		Possession: s.Possession,
		Minute:     s.Clock,
		Commentary: append([]model.CommentaryEntry(nil), s.Commentary...),
		Playing:    s.Playing,
		Is3D:       s.Is3D,
		Speed:      s.Speed,
		Finished:   s.Finished,
	}
}

// CommentarySince returns the entries from index since onward.
func (s Snapshot) CommentarySince(since int) []model.CommentaryEntry {
	if since < 0 {
		since = 0
	}
	if since >= len(s.Commentary) {
		return []model.CommentaryEntry{}
	}
	return s.Commentary[since:]
}
