package narrative

import (
	"fmt"
	"strings"

	"github.com/okian/kickoff/internal/domain/model"
)

const promptTemplate = `Simulate the events of a football match between %[1]s (ID: %[2]s) and %[3]s (ID: %[4]s) for minutes %[5]d to %[6]d.
Current Score at minute %[7]d: %[8]d - %[9]d.

Home Players: %[10]s.
Away Players: %[11]s.

Return a JSON array with one object per minute. Each object MUST include:

Required fields:
1. 'minute': Integer (the current minute).
2. 'commentary': String (detailed play-by-play description of what happened this minute).
3. 'events': Array (can be empty). Events can include:
   - Type: "goal", "yellow_card", "red_card"
   - teamId: MUST be exactly "%[2]s" or "%[4]s"
   - playerId: Use the exact ID provided above
4. 'newScore': Object (only include if a goal occurs). Format: { home: number, away: number }
   - MUST be a cumulative update from the starting score
   - For example: If starting score is 1-0 and home team scores again, newScore should be { home: 2, away: 0 }
   - For example: If starting score is 1-1 and away team scores, newScore should be { home: 1, away: 2 }

Make the commentary diverse and match the events that occurred. Include specific player names and actions when possible.

Output strictly valid JSON.`

// BuildPrompt renders the instruction text for one batch.
func BuildPrompt(req BatchRequest) string {
	return fmt.Sprintf(promptTemplate,
		req.Home.Name, req.Home.ID,
		req.Away.Name, req.Away.ID,
		req.Start, req.End(),
		req.Start-1, req.Home.Score, req.Away.Score,
		squad(req.Home), squad(req.Away),
	)
}

func squad(t model.Team) string {
	parts := make([]string, 0, len(t.Players))
	for _, p := range t.Players {
		parts = append(parts, fmt.Sprintf("%s (ID: %s)", p.Name, p.ID))
	}
	return strings.Join(parts, ", ")
}
