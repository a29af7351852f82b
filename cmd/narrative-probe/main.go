// Command narrative-probe requests one batch of frames from the narrative
// service and prints them as JSON. It is useful for checking a credential
// and prompt changes without running the full match.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/kickoff/internal/adapters/narrative"
	"github.com/okian/kickoff/internal/config"
	"github.com/okian/kickoff/internal/domain/roster"
	"github.com/okian/kickoff/pkg/logger"
)

func main() {
	var (
		start    = flag.Int("start", 1, "First match minute to request")
		duration = flag.Int("duration", 3, "Number of minutes to request")
		prompt   = flag.Bool("prompt", false, "Print the prompt instead of calling the service")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWith(os.Stderr, cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Named("probe")

	fixture, err := roster.Load(ctx, cfg.RosterFile)
	if err != nil {
		log.Fatal(ctx, "failed to load roster", logger.Error(err))
	}

	req := narrative.BatchRequest{
		Home:     fixture.Home,
		Away:     fixture.Away,
		Start:    *start,
		Duration: *duration,
	}
	if *prompt {
		os.Stdout.WriteString(narrative.BuildPrompt(req) + "\n")
		return
	}

	client := narrative.NewClient(cfg.APIKey,
		narrative.WithEndpoint(cfg.APIEndpoint),
		narrative.WithModel(cfg.Model),
		narrative.WithTimeout(cfg.RequestTimeout()),
		narrative.WithLogger(logger.Named("narrative")),
	)

	frames, err := client.SimulateBatch(ctx, req)
	if err != nil {
		log.Fatal(ctx, "batch request failed",
			logger.Int("start", req.Start),
			logger.Int("end", req.End()),
			logger.Bool("rate_limited", narrative.IsRateLimited(err)),
			logger.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(frames); err != nil {
		log.Fatal(ctx, "failed to encode frames", logger.Error(err))
	}
	log.Info(ctx, "batch received", logger.Int("frames", len(frames)))
}
