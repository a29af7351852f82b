package feed

import (
	"encoding/json"

	"github.com/okian/kickoff/internal/domain/match"
)

// Outgoing message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// Message is the envelope pushed to feed clients.
type Message struct {
	Type    string          `json:"type"`
	State   *match.Snapshot `json:"state,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Command is an intent sent by a client, e.g. {"type":"toggle_play"}.
type Command struct {
	Type string `json:"type"`
}

func encodeState(snap match.Snapshot) ([]byte, error) {
	return json.Marshal(Message{Type: TypeState, State: &snap})
}

func encodeError(code string, err error) []byte {
	b, _ := json.Marshal(Message{Type: TypeError, Code: code, Message: err.Error()})
	return b
}
