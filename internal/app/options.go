package service

import (
	"time"

	"github.com/okian/kickoff/internal/domain/animation"
	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/internal/domain/producer"
	"github.com/okian/kickoff/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPolicy sets the batching policy.
func WithPolicy(p producer.Policy) Option {
	return func(s *Service) {
		if p.Threshold > 0 && p.FirstBatch > 0 && p.Batch > 0 && p.Horizon > 0 {
			s.policy = p
		}
	}
}

// WithPlaybackInterval sets the time one frame is shown at 1.0x speed.
func WithPlaybackInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.playbackInterval = d
		}
	}
}

// WithAnimationInterval sets the animation tick interval.
func WithAnimationInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.animationInterval = d
		}
	}
}

// WithBufferCapacity sets the frame buffer capacity.
func WithBufferCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bufferCapacity = n
		}
	}
}

// WithInitialSpeed sets the starting playback speed.
func WithInitialSpeed(speed float64) Option {
	return func(s *Service) {
		if speed > 0 {
			s.initialSpeed = speed
		}
	}
}

// WithAutoplay starts playback as soon as the service starts.
func WithAutoplay(on bool) Option {
	return func(s *Service) {
		s.autoplay = on
	}
}

// WithMatchID sets the match id instead of a random one.
func WithMatchID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.matchID = id
		}
	}
}

// WithProcessor replaces the frame processor.
func WithProcessor(p *match.Processor) Option {
	return func(s *Service) {
		if p != nil {
			s.processor = p
		}
	}
}

// WithAnimator replaces the animator.
func WithAnimator(a *animation.Animator) Option {
	return func(s *Service) {
		if a != nil {
			s.animator = a
		}
	}
}

// WithClock replaces the wall clock used for backoff and drift.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
