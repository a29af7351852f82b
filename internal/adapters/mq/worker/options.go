package worker

import (
	"time"

	"github.com/okian/kickoff/pkg/logger"
)

// Option applies a configuration option to the TickerWorker.
type Option func(*TickerWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *TickerWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithInterval sets the tick interval. Intervals below one millisecond are
// raised to one millisecond.
func WithInterval(d time.Duration) Option {
	return func(w *TickerWorker) {
		w.interval = max(d, minimumTickerInterval)
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *TickerWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
