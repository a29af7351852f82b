// Package commentary holds the stock lines used when the narrative source
// gives no text of its own.
package commentary

import (
	"fmt"

	"github.com/okian/kickoff/internal/domain/model"
)

// RateLimited is the filler line used while the narrative source cools down.
const RateLimited = "Match intensity is high..."

var catalogue = []string{
	"The ball is in play, teams competing for possession.",
	"Midfield battle continues with both teams pressing.",
	"A long pass is played forward, looking for attacking opportunities.",
	"Defenders are organizing well, limiting space for the opposition.",
	"Quick one-touch passing creates a promising attack.",
	"The goalkeeper collects a high ball comfortably.",
	"A tackle wins possession back for the team.",
	"Players are moving into position for the next phase of play.",
	"A cross into the box is cleared by the defense.",
	"Build-up play from the back, maintaining possession.",
	"A through ball splits the defense, but the offside flag is up.",
	"A corner kick is awarded, teams preparing in the box.",
	"A shot from distance goes wide of the target.",
	"A free kick is taken, curling towards the goal.",
	"The referee signals for a foul, giving away a free kick.",
}

// Default returns the stock line for position index, rotating through the
// catalogue.
func Default(index int) string {
	if index < 0 {
		index = -index
	}
	return catalogue[index%len(catalogue)]
}

// ForEvents describes the first event when there is one, otherwise it
// falls back to Default(index).
func ForEvents(events []model.FrameEvent, index int) string {
	if len(events) == 0 {
		return Default(index)
	}
	e := events[0]
	switch e.Type {
	case model.EventGoal:
		return fmt.Sprintf("GOAL! %s scores an incredible goal!", e.PlayerID)
	case model.EventYellowCard:
		return fmt.Sprintf("Yellow card shown to %s for a reckless tackle.", e.PlayerID)
	case model.EventRedCard:
		return fmt.Sprintf("Red card! %s is sent off, team down to 10 men.", e.PlayerID)
	default:
		return Default(index)
	}
}
