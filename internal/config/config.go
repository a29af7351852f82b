// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/okian/kickoff/internal/domain/match"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIKey is the narrative service credential. Empty disables playback.
	APIKey string `koanf:"api_key"`

	// APIEndpoint is the chat-completions URL of the narrative service.
	APIEndpoint string `koanf:"api_endpoint"`

	// Model names the text-generation model.
	Model string `koanf:"model"`

	// RequestTimeoutMS bounds a single narrative request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// BufferThreshold is the buffer depth under which a new batch is fetched.
	BufferThreshold int `koanf:"buffer_threshold"`

	// BufferCapacity bounds the frame buffer.
	BufferCapacity int `koanf:"buffer_capacity"`

	// FirstBatchMinutes and BatchMinutes size the narrative requests.
	FirstBatchMinutes int `koanf:"first_batch_minutes"`
	BatchMinutes      int `koanf:"batch_minutes"`

	// BackoffMS is the cooldown after a rate-limited request.
	BackoffMS int `koanf:"backoff_ms"`

	// PlaybackIntervalMS is the duration of one match minute at 1.0x.
	PlaybackIntervalMS int `koanf:"playback_interval_ms"`

	// AnimationIntervalMS is the animation tick.
	AnimationIntervalMS int `koanf:"animation_interval_ms"`

	// InitialSpeed must be one of match.Speeds.
	InitialSpeed float64 `koanf:"initial_speed"`

	// RosterFile optionally points at a YAML roster. Empty uses the built-in teams.
	RosterFile string `koanf:"roster_file"`

	// Autoplay starts playback as soon as the service is up.
	Autoplay bool `koanf:"autoplay"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		APIEndpoint:         "https://open.bigmodel.cn/api/paas/v4/chat/completions",
		Model:               "glm-4.6",
		RequestTimeoutMS:    60_000,
		BufferThreshold:     8,
		BufferCapacity:      90,
		FirstBatchMinutes:   3,
		BatchMinutes:        12,
		BackoffMS:           10_000,
		PlaybackIntervalMS:  10_000,
		AnimationIntervalMS: 50,
		InitialSpeed:        1.0,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Backoff returns BackoffMS as a duration.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

// PlaybackInterval returns PlaybackIntervalMS as a duration.
func (c *Config) PlaybackInterval() time.Duration {
	return time.Duration(c.PlaybackIntervalMS) * time.Millisecond
}

// AnimationInterval returns AnimationIntervalMS as a duration.
func (c *Config) AnimationInterval() time.Duration {
	return time.Duration(c.AnimationIntervalMS) * time.Millisecond
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.BufferThreshold < 1:
		return fmt.Errorf("%w: buffer_threshold must be positive", ErrInvalidConfig)
	case c.FirstBatchMinutes < 1 || c.BatchMinutes < 1:
		return fmt.Errorf("%w: batch sizes must be positive", ErrInvalidConfig)
	case c.BufferCapacity < c.BufferThreshold+c.BatchMinutes:
		return fmt.Errorf("%w: buffer_capacity must hold buffer_threshold+batch_minutes frames", ErrInvalidConfig)
	case c.PlaybackIntervalMS < 1 || c.AnimationIntervalMS < 1:
		return fmt.Errorf("%w: intervals must be positive", ErrInvalidConfig)
	case c.BackoffMS < 0:
		return fmt.Errorf("%w: backoff_ms must not be negative", ErrInvalidConfig)
	case !slices.Contains(match.Speeds, c.InitialSpeed):
		return fmt.Errorf("%w: initial_speed %v is not a supported speed", ErrInvalidConfig, c.InitialSpeed)
	}
	return nil
}
