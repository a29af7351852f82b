package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/kickoff/internal/adapters/http/api"
	"github.com/okian/kickoff/internal/adapters/http/feed"
	"github.com/okian/kickoff/internal/adapters/http/swagger"
	"github.com/okian/kickoff/internal/adapters/narrative"
	app "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/config"
	"github.com/okian/kickoff/internal/domain/producer"
	"github.com/okian/kickoff/internal/domain/roster"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWith(os.Stdout, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	fixture, err := roster.Load(ctx, cfg.RosterFile)
	if err != nil {
		log.Fatal(ctx, "failed to load roster", logger.String("file", cfg.RosterFile), logger.Error(err))
	}

	client := narrative.NewClient(cfg.APIKey, clientOptions(cfg)...)
	if !client.HasCredential() {
		log.Warn(ctx, "no narrative credential configured; playback is disabled")
	}

	svc := app.New(fixture, client, serviceOptions(cfg)...)
	if err := svc.Start(ctx); err != nil {
		log.Fatal(ctx, "failed to start service", logger.Error(err))
	}
	defer svc.Stop()

	hub := feed.NewHub(svc)
	go hub.Run(ctx)

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, hub),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("home", fixture.Home.Name),
			logger.String("away", fixture.Away.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newMux registers the REST API, its docs and the websocket feed.
func newMux(ctx context.Context, svc *app.Service, hub http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	mux.Handle("/ws", hub)
	return mux
}

func clientOptions(cfg *config.Config) []narrative.Option {
	return []narrative.Option{
		narrative.WithEndpoint(cfg.APIEndpoint),
		narrative.WithModel(cfg.Model),
		narrative.WithTimeout(cfg.RequestTimeout()),
		narrative.WithLogger(logger.Named("narrative")),
	}
}

func serviceOptions(cfg *config.Config) []app.Option {
	policy := producer.DefaultPolicy()
	policy.Threshold = cfg.BufferThreshold
	policy.FirstBatch = cfg.FirstBatchMinutes
	policy.Batch = cfg.BatchMinutes
	policy.Backoff = cfg.Backoff()

	return []app.Option{
		app.WithLogger(logger.Named("match")),
		app.WithPolicy(policy),
		app.WithBufferCapacity(cfg.BufferCapacity),
		app.WithPlaybackInterval(cfg.PlaybackInterval()),
		app.WithAnimationInterval(cfg.AnimationInterval()),
		app.WithInitialSpeed(cfg.InitialSpeed),
		app.WithAutoplay(cfg.Autoplay),
	}
}

// startSystemMetricsUpdater periodically publishes process metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
