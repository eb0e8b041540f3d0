// Command fplboard is the entry point for the gameweek aggregation engine.
// It loads configuration, validates it, wires dependencies, sets up signal
// handling, and runs the configured one-shot mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gwstat/fplboard/internal/app"
	"github.com/gwstat/fplboard/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	mode := flag.String("mode", "", "override mode (status, baseline, overlay, teams, cohort, prune)")
	roster := flag.Int64("roster", 0, "roster id for overlay/cohort modes")
	league := flag.Int64("league", 0, "league id for cohort mode")
	size := flag.Int("size", 0, "cohort size for cohort mode")
	flag.Parse()

	// Structured JSON logs on stderr; stdout carries mode output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Flag overrides win over file and environment.
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *roster != 0 {
		cfg.Engine.Roster = *roster
	}
	if *league != 0 {
		cfg.Engine.League = *league
	}
	if *size > 0 {
		cfg.Engine.CohortSize = *size
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("fplboard starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("shut down gracefully")
		} else {
			logger.Error("exited with error", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("fplboard stopped")
}
