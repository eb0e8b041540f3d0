// Package app provides the top-level application lifecycle for the gameweek
// engine. It wires together the upstream client, caches, stores, and
// builders, and runs the one-shot mode selected by configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gwstat/fplboard/internal/config"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, runs the selected
// mode to completion, and tears everything down. Modes are one-shot: each
// performs its pass, prints the result, and returns.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting",
		slog.String("mode", a.cfg.Mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch strings.ToLower(a.cfg.Mode) {
	case "status":
		return a.StatusMode(ctx, deps)
	case "baseline":
		return a.BaselineMode(ctx, deps)
	case "overlay":
		return a.OverlayMode(ctx, deps)
	case "teams":
		return a.TeamsMode(ctx, deps)
	case "cohort":
		return a.CohortMode(ctx, deps)
	case "prune":
		return a.PruneMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
