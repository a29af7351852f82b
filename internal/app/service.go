// Package service runs one match: it owns the match state and drives the
// fetch, playback and animation pipeline around it.
//
// All state changes happen on a single event-loop goroutine. Ticker
// workers, fetch goroutines and callers only send it messages.
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/okian/kickoff/internal/adapters/mq/queue"
	"github.com/okian/kickoff/internal/adapters/mq/worker"
	"github.com/okian/kickoff/internal/adapters/narrative"
	"github.com/okian/kickoff/internal/domain/animation"
	"github.com/okian/kickoff/internal/domain/match"
	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/internal/domain/producer"
	"github.com/okian/kickoff/internal/domain/roster"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// Defaults.
const (
	defaultPlaybackInterval  = 10 * time.Second
	defaultAnimationInterval = 50 * time.Millisecond
	defaultBufferCapacity    = 90
	inboxSize                = 64
)

// Narrator produces narrative frames for a range of minutes.
type Narrator interface {
	SimulateBatch(ctx context.Context, req narrative.BatchRequest) ([]model.Frame, error)
	HasCredential() bool
}

// Pipeline describes the producer side of a snapshot.
type Pipeline struct {
	InFlight     bool      `json:"inFlight"`
	BackoffUntil time.Time `json:"backoffUntil"`
	Fetches      int       `json:"fetches"`
	Fillers      int       `json:"fillers"`
}

// Service runs a single match.
type Service struct {
	mu sync.RWMutex

	// Configuration
	fixture           roster.Fixture
	narrator          Narrator
	policy            producer.Policy
	playbackInterval  time.Duration
	animationInterval time.Duration
	bufferCapacity    int
	initialSpeed      float64
	autoplay          bool
	matchID           string
	processor         *match.Processor
	animator          *animation.Animator
	now               func() time.Time

	// Owned by the event loop
	state       *match.State
	feed        *producer.Feed
	buffer      queue.Queue
	pool        *worker.Pool
	poolCancel  context.CancelFunc
	pipeline    Pipeline
	inbox       chan message
	subscribers map[chan match.Snapshot]struct{}

	// Guarded by mu
	snapshot match.Snapshot
	piped    Pipeline
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}

	logger logger.Logger
}

// New constructs a service for the given fixture.
func New(fixture roster.Fixture, narrator Narrator, opts ...Option) *Service {
	s := &Service{
		fixture:           fixture,
		narrator:          narrator,
		policy:            producer.DefaultPolicy(),
		playbackInterval:  defaultPlaybackInterval,
		animationInterval: defaultAnimationInterval,
		bufferCapacity:    defaultBufferCapacity,
		initialSpeed:      match.Speeds[0],
		now:               time.Now,
		subscribers:       make(map[chan match.Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.matchID == "" {
		s.matchID = uuid.NewString()
	}
	if s.processor == nil {
		s.processor = match.NewProcessor()
	}
	if s.animator == nil {
		s.animator = animation.New()
	}
	s.state = match.New(s.matchID, fixture.Home, fixture.Away, s.initialSpeed)
	s.feed = producer.NewFeed(s.policy)
	s.snapshot = s.decorate(s.state.Snapshot())
	return s
}

// Start launches the event loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("match")
	}

	s.buffer = queue.NewInMemoryQueue(queue.WithCapacity(s.bufferCapacity))
	s.inbox = make(chan message, inboxSize)
	s.done = make(chan struct{})

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.started = true

	go s.run(loopCtx)

	s.logger.Info(ctx, "match service started",
		logger.String("match", s.matchID),
		logger.String("home", s.fixture.Home.ID),
		logger.String("away", s.fixture.Away.ID),
		logger.Bool("credential", s.narrator.HasCredential()),
		logger.Bool("autoplay", s.autoplay),
	)
	return nil
}

// Stop shuts down the event loop and the ticker workers.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping match service...")
	cancel()
	<-done
	_ = s.buffer.Close()
	s.logger.Info(context.Background(), "match service stopped")
}

// Done is closed when the event loop exits.
func (s *Service) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)
	defer s.stopWorkers(context.Background())

	if s.autoplay {
		if err := s.play(ctx); err != nil {
			s.logger.Warn(ctx, "autoplay skipped", logger.Error(err))
		}
		s.maybeFetch(ctx)
		s.publish()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-s.inbox:
			m.apply(ctx, s)
			s.maybeFetch(ctx)
			snap := s.publish()
			if r, ok := m.(*intentRequest); ok {
				r.reply <- intentReply{snapshot: snap, err: r.err}
			}
		}
	}
}

// post hands m to the event loop unless ctx ends first.
func (s *Service) post(ctx context.Context, m message) bool {
	select {
	case s.inbox <- m:
		return true
	case <-ctx.Done():
		return false
	}
}

func (t animationTick) apply(_ context.Context, s *Service) {
	if !s.state.Playing {
		return
	}
	tr := s.animator.Step(s.state, t.now)
	if tr != animation.Flying && tr != animation.Held {
		metrics.RecordBallTransition(string(tr))
	}
}

func (playbackTick) apply(ctx context.Context, s *Service) {
	if !s.state.Playing {
		return
	}
	f, ok := s.buffer.Pop(ctx)
	if !ok {
		metrics.RecordEmptyTick()
		return
	}

	out := s.processor.Apply(s.state, &f)
	metrics.RecordFrameProcessed()
	metrics.UpdateMatchMinute(s.state.Clock)
	if out.CommentarySuppressed {
		metrics.RecordCommentarySuppressed()
	}
	for _, r := range out.Resolutions {
		metrics.RecordEventResolution(string(r.Team), string(r.Player))
		if r.Player == match.PlayerRandomFallback || r.Team == match.TeamUnresolved {
			s.logger.Debug(ctx, "frame event resolved loosely",
				logger.String("type", string(r.Event.Type)),
				logger.String("team_ref", r.Event.TeamID),
				logger.String("player_ref", r.Event.PlayerID),
				logger.String("team", string(r.Team)),
				logger.String("player", string(r.Player)),
			)
		}
	}
	if out.FinalWhistle {
		s.logger.Info(ctx, "final whistle",
			logger.Int("home", s.state.Home.Score),
			logger.Int("away", s.state.Away.Score),
		)
		s.stopWorkers(ctx)
	}
}

func (r fetchResult) apply(ctx context.Context, s *Service) {
	frames := r.frames
	outcome := "ok"
	switch {
	case r.err == nil && len(frames) > 0:
		s.feed.Succeed(r.batch)
	case narrative.IsRateLimited(r.err):
		outcome = string(producer.ReasonRateLimited)
		s.feed.Fail(r.batch, s.now(), true)
		frames = producer.Fallback(r.batch, producer.ReasonRateLimited)
	default:
		outcome = string(producer.ReasonTransient)
		if r.err == nil {
			r.err = errors.New("empty batch")
		}
		s.feed.Fail(r.batch, s.now(), false)
		frames = producer.Fallback(r.batch, producer.ReasonTransient)
	}

	s.pipeline.Fetches++
	metrics.RecordFetch(outcome, float64(r.latency.Milliseconds()))
	metrics.UpdateFetchedUpTo(s.feed.FetchedUpTo())
	if outcome != "ok" {
		s.pipeline.Fillers += len(frames)
		metrics.RecordFillerFrames(outcome, len(frames))
		s.logger.Warn(ctx, "batch replaced by fillers",
			logger.Int("start", r.batch.Start),
			logger.Int("duration", r.batch.Duration),
			logger.String("reason", outcome),
			logger.Error(r.err),
		)
	}

	if n := s.buffer.EnqueueAll(ctx, frames); n < len(frames) {
		s.logger.Error(ctx, "frame buffer full, frames dropped",
			logger.Int("accepted", n),
			logger.Int("received", len(frames)),
		)
	}
}

func (r *intentRequest) apply(ctx context.Context, s *Service) {
	switch r.intent {
	case IntentTogglePlay:
		if s.state.Playing {
			s.pause(ctx)
			return
		}
		r.err = s.play(ctx)
	case IntentToggleView:
		s.state.Is3D = !s.state.Is3D
	case IntentCycleSpeed:
		s.state.Speed = match.NextSpeed(s.state.Speed)
		if s.state.Playing {
			s.stopWorkers(ctx)
			s.startWorkers(ctx)
		}
		s.logger.Debug(ctx, "speed changed", logger.Float64("speed", s.state.Speed))
	default:
		r.err = ErrUnknownIntent
	}
}

func (s *Service) play(ctx context.Context) error {
	if !s.narrator.HasCredential() {
		return ErrNoCredential
	}
	if s.state.Finished {
		return nil
	}
	s.state.Playing = true
	s.startWorkers(ctx)
	return nil
}

func (s *Service) pause(ctx context.Context) {
	s.state.Playing = false
	s.stopWorkers(ctx)
}

// startWorkers starts the animation and playback tickers for the current
// speed.
func (s *Service) startWorkers(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	playback := time.Duration(float64(s.playbackInterval) / s.state.Speed)

	s.pool = worker.NewPool(
		worker.NewTickerWorker(func(wctx context.Context, now time.Time) {
			s.post(wctx, animationTick{now: now})
		}, worker.WithName("animation"), worker.WithInterval(s.animationInterval)),
		worker.NewTickerWorker(func(wctx context.Context, _ time.Time) {
			s.post(wctx, playbackTick{})
		}, worker.WithName("playback"), worker.WithInterval(playback)),
	)
	s.poolCancel = cancel
	s.pool.Start(workerCtx)
}

// stopWorkers cancels the worker context first so a handler blocked on the
// inbox cannot stall shutdown.
func (s *Service) stopWorkers(ctx context.Context) {
	if s.pool == nil {
		return
	}
	s.poolCancel()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.pool, s.poolCancel = nil, nil
}

// maybeFetch starts one narrative request when the producer policy allows.
func (s *Service) maybeFetch(ctx context.Context) {
	b, ok := s.feed.Begin(producer.Conditions{
		Playing:       s.state.Playing,
		HasCredential: s.narrator.HasCredential(),
		Clock:         s.state.Clock,
		BufferLen:     s.buffer.Len(ctx),
		Now:           s.now(),
	})
	if !ok {
		return
	}

	req := narrative.BatchRequest{
		Home:     s.state.Home.Clone(),
		Away:     s.state.Away.Clone(),
		Start:    b.Start,
		Duration: b.Duration,
	}
	s.logger.Debug(ctx, "fetching batch", logger.Int("start", b.Start), logger.Int("duration", b.Duration))

	go func() {
		start := time.Now()
		frames, err := s.narrator.SimulateBatch(ctx, req)
		s.post(ctx, fetchResult{batch: b, frames: frames, err: err, latency: time.Since(start)})
	}()
}

// decorate adds the pipeline fields owned by the service.
func (s *Service) decorate(snap match.Snapshot) match.Snapshot {
	snap.HasCredential = s.narrator.HasCredential()
	snap.FetchedUpTo = s.feed.FetchedUpTo()
	if s.buffer != nil {
		snap.BufferDepth = s.buffer.Len(context.Background())
	}
	return snap
}

// publish stores a fresh snapshot and hands it to subscribers. Slow
// subscribers only ever see the latest snapshot.
func (s *Service) publish() match.Snapshot {
	snap := s.decorate(s.state.Snapshot())
	s.pipeline.InFlight = s.feed.InFlight()
	s.pipeline.BackoffUntil = s.feed.BackoffUntil()

	s.mu.Lock()
	s.snapshot = snap
	s.piped = s.pipeline
	subs := make([]chan match.Snapshot, 0, len(s.subscribers))
	for ch := range s.subscribers {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}

// Snapshot returns the latest published match snapshot.
func (s *Service) Snapshot() match.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe returns a channel receiving each published snapshot and a
// function that ends the subscription.
func (s *Service) Subscribe() (<-chan match.Snapshot, func()) {
	ch := make(chan match.Snapshot, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
		})
	}
}

// Do applies a user intent and returns the resulting snapshot.
func (s *Service) Do(ctx context.Context, intent Intent) (match.Snapshot, error) {
	s.mu.RLock()
	started, done := s.started, s.done
	s.mu.RUnlock()
	if !started {
		return match.Snapshot{}, ErrNotStarted
	}

	req := &intentRequest{intent: intent, reply: make(chan intentReply, 1)}
	select {
	case s.inbox <- req:
	case <-done:
		return match.Snapshot{}, ErrNotStarted
	case <-ctx.Done():
		return match.Snapshot{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.snapshot, r.err
	case <-done:
		return match.Snapshot{}, ErrNotStarted
	case <-ctx.Done():
		return match.Snapshot{}, ctx.Err()
	}
}

// TogglePlay starts or pauses playback. Starting requires a credential.
func (s *Service) TogglePlay(ctx context.Context) (match.Snapshot, error) {
	return s.Do(ctx, IntentTogglePlay)
}

// ToggleView switches between the 2D and 3D pitch.
func (s *Service) ToggleView(ctx context.Context) (match.Snapshot, error) {
	return s.Do(ctx, IntentToggleView)
}

// CycleSpeed moves to the next playback speed.
func (s *Service) CycleSpeed(ctx context.Context) (match.Snapshot, error) {
	return s.Do(ctx, IntentCycleSpeed)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, p := s.snapshot, s.piped
	stats := map[string]interface{}{
		"started":       s.started,
		"matchId":       snap.ID,
		"minute":        snap.Minute,
		"playing":       snap.Playing,
		"finished":      snap.Finished,
		"speed":         snap.Speed,
		"hasCredential": snap.HasCredential,
		"bufferDepth":   snap.BufferDepth,
		"fetchedUpTo":   snap.FetchedUpTo,
		"inFlight":      p.InFlight,
		"fetches":       p.Fetches,
		"fillers":       p.Fillers,
		"score":         map[string]int{"home": snap.Home.Score, "away": snap.Away.Score},
	}
	if !p.BackoffUntil.IsZero() {
		stats["backoffUntil"] = p.BackoffUntil
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats["memory"] = humanize.IBytes(mem.Alloc)
	metrics.UpdateSystemMemoryUsage(mem.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	metrics.UpdateBufferDepth(snap.BufferDepth)
	return stats
}
