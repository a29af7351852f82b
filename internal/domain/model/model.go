// Package model contains domain models passed between layers.
package model

// Role is a player's line on the pitch.
type Role string

// Player roles.
const (
	RoleGoalkeeper Role = "GK"
	RoleDefender   Role = "DEF"
	RoleMidfielder Role = "MID"
	RoleForward    Role = "FWD"
)

// EventType classifies a match event.
type EventType string

// Match event types.
const (
	EventGoal       EventType = "goal"
	EventYellowCard EventType = "yellow_card"
	EventRedCard    EventType = "red_card"
	EventSubIn      EventType = "sub_in"
	EventSubOut     EventType = "sub_out"
)

// CommentaryType tags a commentary line for presentation.
type CommentaryType string

// Commentary types.
const (
	CommentaryNeutral   CommentaryType = "neutral"
	CommentaryHighlight CommentaryType = "highlight"
	CommentaryGoal      CommentaryType = "goal"
)

// Position is a pitch coordinate in percent, both axes in [0,100].
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MatchEvent is recorded on a player and never modified afterwards.
type MatchEvent struct {
	Type        EventType `json:"type"`
	Minute      int       `json:"minute"`
	Description string    `json:"description,omitempty"`
}

// Player is a squad member.
type Player struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Number   int          `json:"number"`
	Role     Role         `json:"role"`
	Position Position     `json:"position"`
	Base     Position     `json:"base"` // formation anchor used by drift
	Rating   float64      `json:"rating"`
	Events   []MatchEvent `json:"events"`
}

// Team is one side of the match.
type Team struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Abbreviation   string   `json:"abbreviation"`
	Color          string   `json:"color"`
	SecondaryColor string   `json:"secondaryColor"`
	Formation      string   `json:"formation"`
	Coach          string   `json:"coach"`
	Value          string   `json:"value"`
	Score          int      `json:"score"`
	Players        []Player `json:"players"`
}

// PlayerIndex returns the index of the player with the given id.
func (t *Team) PlayerIndex(id string) (int, bool) {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy of the team.
func (t Team) Clone() Team {
	out := t
	out.Players = make([]Player, len(t.Players))
	for i, p := range t.Players {
		p.Events = append([]MatchEvent(nil), p.Events...)
		out.Players[i] = p
	}
	return out
}

// Ball is either in flight toward TargetID, held by OwnerID, or idle.
// At most one of TargetID and OwnerID is set.
type Ball struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Height   float64 `json:"height"`
	TargetID string  `json:"targetId,omitempty"`
	OwnerID  string  `json:"ownerId,omitempty"`
}

// FrameEvent is an event as reported by the narrative source.
type FrameEvent struct {
	Type     EventType `json:"type"`
	TeamID   string    `json:"teamId"`
	PlayerID string    `json:"playerId"`
}

// Score is a cumulative scoreline carried by a frame. Either side may be
// missing when the source omits it.
type Score struct {
	Home *int `json:"home,omitempty"`
	Away *int `json:"away,omitempty"`
}

// Frame is one minute of narrative progress. Every field is optional.
type Frame struct {
	Minute     *int         `json:"minute,omitempty"`
	Commentary string       `json:"commentary,omitempty"`
	Events     []FrameEvent `json:"events,omitempty"`
	NewScore   *Score       `json:"newScore,omitempty"`
}

// HasGoal reports whether any event in the frame is a goal.
func (f *Frame) HasGoal() bool {
	for _, e := range f.Events {
		if e.Type == EventGoal {
			return true
		}
	}
	return false
}

// CommentaryEntry is one line of the commentary feed.
type CommentaryEntry struct {
	Minute int            `json:"minute"`
	Text   string         `json:"text"`
	Type   CommentaryType `json:"type"`
}

// Int returns a pointer to n; used to build optional frame fields.
func Int(n int) *int {
	return &n
}
