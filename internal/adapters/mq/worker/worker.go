// Package worker runs the periodic tickers that drive playback and
// animation. Workers never touch match state; they hand each tick to a
// Handler, which forwards it to the state owner.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultInterval       = time.Second
	poolShutdownTimeout   = 5 * time.Second
	minimumTickerInterval = time.Millisecond
)

// Handler receives each tick.
type Handler func(ctx context.Context, now time.Time)

// Worker runs until ctx is canceled or Shutdown is called.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the loop to exit.
	Shutdown(ctx context.Context) error
}

// TickerWorker calls its handler on a fixed interval.
type TickerWorker struct {
	name     string
	interval time.Duration
	handler  Handler

	// Shutdown control
	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewTickerWorker creates a worker that calls handler on every tick.
func NewTickerWorker(handler Handler, opts ...Option) *TickerWorker {
	w := &TickerWorker{
		name:     "ticker",
		interval: defaultInterval,
		handler:  handler,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Name returns the worker name.
func (w *TickerWorker) Name() string { return w.name }

// Interval returns the tick interval.
func (w *TickerWorker) Interval() time.Duration { return w.interval }

// Run starts the ticker loop.
func (w *TickerWorker) Run(ctx context.Context) {
	defer close(w.done)
	metrics.AddWorkersRunning(1)
	defer metrics.AddWorkersRunning(-1)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug(ctx, "worker started", logger.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case now := <-ticker.C:
			metrics.RecordWorkerTick(w.name)
			w.handler(ctx, now)
		}
	}
}

// Shutdown signals the loop to stop and waits for it.
func (w *TickerWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool starts and stops a set of workers together.
type Pool struct {
	workers []*TickerWorker
	logger  logger.Logger
}

// NewPool creates a pool of the given workers.
func NewPool(workers ...*TickerWorker) *Pool {
	return &Pool{
		workers: workers,
		logger:  logger.Get().Named("worker-pool"),
	}
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown stops every worker, waiting up to poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for _, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.String("worker", w.name))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
