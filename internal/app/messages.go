package service

import (
	"context"
	"time"

	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/producer"
)

// message is anything the event loop applies to the match state.
type message interface {
	apply(ctx context.Context, s *Service)
}

type animationTick struct {
	now time.Time
}

type playbackTick struct{}

type fetchResult struct {
	batch   producer.Batch
	frames  []model.Frame
	err     error
	latency time.Duration
}

// Intent is a user action on the match.
type Intent string

// Supported intents.
const (
	IntentTogglePlay Intent = "toggle_play"
	IntentToggleView Intent = "toggle_view"
	IntentCycleSpeed Intent = "cycle_speed"
)

type intentReply struct {
	snapshot match.Snapshot
	err      error
}

type intentRequest struct {
	intent Intent
	err    error
	reply  chan intentReply
}
