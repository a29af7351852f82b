package match

import (
	"strings"

	"github.com/okian/kickoff/internal/domain/model"
)

// TeamResolution names how an event's team reference was matched.
type TeamResolution string

// Team resolution branches, tried in order.
const (
	TeamByID       TeamResolution = "team_by_id"
	TeamBySymbol   TeamResolution = "team_by_symbol"
	TeamUnresolved TeamResolution = "team_unresolved"
)

// PlayerResolution names how an event's player reference was matched.
type PlayerResolution string

// Player resolution branches.
const (
	PlayerByID           PlayerResolution = "player_by_id"
	PlayerRandomFallback PlayerResolution = "player_random_fallback"
	PlayerNone           PlayerResolution = "player_none"
)

// resolveTeam matches an exact team id first, then the symbolic names
// "home" and "away" in any case.
func (s *State) resolveTeam(ref string) (*model.Team, TeamResolution) {
	for _, t := range s.Teams() {
		if t.ID == ref {
			return t, TeamByID
		}
	}
	switch strings.ToLower(ref) {
	case "home":
		return &s.Home, TeamBySymbol
	case "away":
		return &s.Away, TeamBySymbol
	}
	return nil, TeamUnresolved
}

// resolvePlayer matches an exact player id on team, otherwise picks a
// uniformly random squad member so the event still counts.
func resolvePlayer(t *model.Team, ref string, rnd Rand) (int, PlayerResolution) {
	if i, ok := t.PlayerIndex(ref); ok {
		return i, PlayerByID
	}
	if len(t.Players) == 0 {
		return -1, PlayerNone
	}
	return rnd.Intn(len(t.Players)), PlayerRandomFallback
}
