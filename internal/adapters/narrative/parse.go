package narrative

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/okian/kickoff/internal/domain/commentary"
	"github.com/okian/kickoff/internal/domain/model"
)

// ParseFrames turns model output into frames for the batch starting at
// start. Fields are read one by one; a bad field is dropped or defaulted
// without rejecting the item.
func ParseFrames(content string, start int) ([]model.Frame, error) {
	items, err := frameItems(stripFences(content))
	if err != nil {
		return nil, err
	}
	frames := make([]model.Frame, 0, len(items))
	for i, raw := range items {
		frames = append(frames, parseItem(raw, start, i))
	}
	return frames, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// frameItems accepts a JSON array, an object wrapping one array, or a
// single frame object.
func frameItems(s string) ([]map[string]json.RawMessage, error) {
	data := []byte(s)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponse)
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		if _, ok := obj["minute"]; ok {
			return []map[string]json.RawMessage{obj}, nil
		}
		if _, ok := obj["commentary"]; ok {
			return []map[string]json.RawMessage{obj}, nil
		}
		for _, v := range obj {
			if v := bytes.TrimSpace(v); len(v) > 0 && v[0] == '[' {
				return decodeArray(v)
			}
		}
		return nil, fmt.Errorf("%w: object holds no frame array", ErrInvalidResponse)
	default:
		return nil, fmt.Errorf("%w: not a JSON array or object", ErrInvalidResponse)
	}
}

func decodeArray(data []byte) ([]map[string]json.RawMessage, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	items := make([]map[string]json.RawMessage, 0, len(raw))
	for _, r := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(r, &obj); err != nil {
			obj = map[string]json.RawMessage{} // keeps the minute slot
		}
		items = append(items, obj)
	}
	return items, nil
}

func parseItem(raw map[string]json.RawMessage, start, index int) model.Frame {
	f := model.Frame{Events: []model.FrameEvent{}}

	if n, ok := number(raw["minute"]); ok {
		f.Minute = model.Int(n)
	} else {
		f.Minute = model.Int(start + index)
	}

	if evs, ok := raw["events"]; ok {
		f.Events = events(evs)
	}

	var text string
	if c, ok := raw["commentary"]; ok && json.Unmarshal(c, &text) == nil && text != "" {
		f.Commentary = text
	} else {
		f.Commentary = commentary.ForEvents(f.Events, index)
	}

	if sc, ok := raw["newScore"]; ok {
		f.NewScore = score(sc)
	}
	return f
}

func number(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(v), true
}

func events(raw json.RawMessage) []model.FrameEvent {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []model.FrameEvent{}
	}
	out := make([]model.FrameEvent, 0, len(items))
	for _, item := range items {
		var it map[string]json.RawMessage
		if json.Unmarshal(item, &it) != nil {
			continue
		}
		e := model.FrameEvent{
			Type:     model.EventType(str(it["type"])),
			TeamID:   str(it["teamId"]),
			PlayerID: str(it["playerId"]),
		}
		if e.Type == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

func str(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func score(raw json.RawMessage) *model.Score {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil
	}
	s := &model.Score{}
	if n, ok := number(obj["home"]); ok {
		s.Home = model.Int(n)
	}
	if n, ok := number(obj["away"]); ok {
		s.Away = model.Int(n)
	}
	if s.Home == nil && s.Away == nil {
		return nil
	}
	return s
}
