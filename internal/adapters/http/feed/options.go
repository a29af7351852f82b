package feed

import (
	"time"

	"github.com/okian/kickoff/pkg/logger"
)

const defaultIntentTimeout = 5 * time.Second

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// WithIntentTimeout bounds how long a client command may wait on the service.
func WithIntentTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.timeout = d
		}
	}
}
