// Package producer decides when and what to request from the narrative
// source so that the frame buffer never runs dry.
package producer

import (
	"time"

	"github.com/okian/kickoff/internal/domain/commentary"
	"github.com/okian/kickoff/internal/domain/model"
)

// Default policy values.
const (
	DefaultThreshold  = 8
	DefaultFirstBatch = 3
	DefaultBatch      = 12
	DefaultHorizon    = 90
	DefaultBackoff    = 10 * time.Second
)

// Policy holds the batching parameters.
type Policy struct {
	Threshold  int           // refill when the buffer holds fewer frames
	FirstBatch int           // minutes requested by the first batch
	Batch      int           // minutes requested by later batches
	Horizon    int           // last minute ever requested
	Backoff    time.Duration // pause after a rate-limit failure
}

// DefaultPolicy returns the standard batching parameters.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:  DefaultThreshold,
		FirstBatch: DefaultFirstBatch,
		Batch:      DefaultBatch,
		Horizon:    DefaultHorizon,
		Backoff:    DefaultBackoff,
	}
}

// Conditions is everything ShouldFetch looks at.
type Conditions struct {
	Playing       bool
	HasCredential bool
	Clock         int
	BufferLen     int
	FetchedUpTo   int
	InFlight      bool
	BackoffUntil  time.Time
	Now           time.Time
}

// ShouldFetch reports whether a new batch request may start.
func (p Policy) ShouldFetch(c Conditions) bool {
	return c.Playing &&
		c.HasCredential &&
		c.Clock < p.Horizon &&
		!c.Now.Before(c.BackoffUntil) &&
		!c.InFlight &&
		c.BufferLen < p.Threshold &&
		c.FetchedUpTo < p.Horizon
}

// Batch is a contiguous range of requested minutes.
type Batch struct {
	Start    int `json:"start"`
	Duration int `json:"duration"`
}

// End returns the last minute of the batch.
func (b Batch) End() int {
	return b.Start + b.Duration - 1
}

// NextBatch returns the batch following fetchedUpTo. The first batch is
// short so the match starts quickly. It returns false past the horizon.
func (p Policy) NextBatch(fetchedUpTo int) (Batch, bool) {
	size := p.Batch
	if fetchedUpTo == 0 {
		size = p.FirstBatch
	}
	d := min(size, p.Horizon-fetchedUpTo)
	if d <= 0 {
		return Batch{}, false
	}
	return Batch{Start: fetchedUpTo + 1, Duration: d}, true
}

// Reason explains why filler frames were produced.
type Reason string

// Filler reasons.
const (
	ReasonRateLimited Reason = "rate_limited"
	ReasonTransient   Reason = "transient"
)

// Fallback builds one filler frame per minute of b. Fillers carry no
// events and no score.
func Fallback(b Batch, reason Reason) []model.Frame {
	frames := make([]model.Frame, 0, b.Duration)
	for i := 0; i < b.Duration; i++ {
		text := commentary.RateLimited
		if reason != ReasonRateLimited {
			text = commentary.Default(i)
		}
		frames = append(frames, model.Frame{
			Minute:     model.Int(b.Start + i),
			Commentary: text,
			Events:     []model.FrameEvent{},
		})
	}
	return frames
}
