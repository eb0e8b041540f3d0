package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
)

// StatusMode polls the oracle once and prints the freshness state.
func (a *App) StatusMode(ctx context.Context, deps *Dependencies) error {
	state, err := deps.Engine.Status(ctx)
	if err != nil {
		return fmt.Errorf("app: status: %w", err)
	}
	a.logger.InfoContext(ctx, "freshness state",
		slog.Int("round", state.Round),
		slog.Bool("live", state.IsLive),
		slog.Bool("maintenance", state.IsMaintenance),
		slog.Time("last_update", state.LastUpdate),
	)
	return emit(state)
}

// BaselineMode runs a full global aggregation pass and prints the entity
// directory with points breakdowns applied.
func (a *App) BaselineMode(ctx context.Context, deps *Dependencies) error {
	result, err := deps.Engine.Baseline(ctx)
	if err != nil {
		return fmt.Errorf("app: baseline: %w", err)
	}
	a.logger.InfoContext(ctx, "baseline built",
		slog.Int("entities", len(result.Entities)),
		slog.Int("round", result.State.Round),
		slog.Int("skipped_rounds", len(result.SkippedRounds)),
	)
	return emit(result.Entities)
}

// OverlayMode builds the configured roster's overlay and prints it.
func (a *App) OverlayMode(ctx context.Context, deps *Dependencies) error {
	roster := domain.RosterID(a.cfg.Engine.Roster)
	result, err := deps.Engine.RosterOverlay(ctx, roster)
	if err != nil {
		return fmt.Errorf("app: overlay: %w", err)
	}
	for _, re := range result.Skipped {
		a.logger.WarnContext(ctx, "round missing from overlay",
			slog.Int("round", re.Round),
			slog.String("error", re.Err.Error()),
		)
	}
	a.logger.InfoContext(ctx, "overlay built",
		slog.Int64("roster", int64(roster)),
		slog.Int("entities", len(result.Entities)),
	)
	return emit(result.Entities)
}

// TeamsMode folds the entity tables down to one row per club and prints
// the table. A configured roster adds the roster-relative columns.
func (a *App) TeamsMode(ctx context.Context, deps *Dependencies) error {
	roster := domain.RosterID(a.cfg.Engine.Roster)
	rows, err := deps.Engine.TeamTable(ctx, roster)
	if err != nil {
		return fmt.Errorf("app: teams: %w", err)
	}
	a.logger.InfoContext(ctx, "team table built",
		slog.Int64("roster", int64(roster)),
		slog.Int("teams", len(rows)),
	)
	return emit(rows)
}

// CohortMode builds the configured league's summary-tier cohort and prints
// it.
func (a *App) CohortMode(ctx context.Context, deps *Dependencies) error {
	league := domain.LeagueID(a.cfg.Engine.League)
	viewer := domain.RosterID(a.cfg.Engine.Roster)
	rows, err := deps.Engine.Cohort(ctx, league, a.cfg.Engine.CohortSize, viewer, domain.TierSummary)
	if err != nil {
		return fmt.Errorf("app: cohort: %w", err)
	}
	a.logger.InfoContext(ctx, "cohort built",
		slog.Int64("league", int64(league)),
		slog.Int("rosters", len(rows)),
	)
	return emit(rows)
}

// PruneMode deletes cache entries older than the configured retention.
func (a *App) PruneMode(ctx context.Context, deps *Dependencies) error {
	if deps.CacheStore == nil {
		return fmt.Errorf("app: prune: postgres is disabled")
	}
	cutoff := time.Now().Add(-a.cfg.Engine.PruneAfter.Duration)
	removed, err := deps.CacheStore.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("app: prune: %w", err)
	}
	a.logger.InfoContext(ctx, "cache pruned",
		slog.Time("cutoff", cutoff),
		slog.Int64("removed", removed),
	)
	return nil
}

// emit writes v as indented JSON on stdout, keeping logs on stderr-bound
// handlers out of the payload stream.
func emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("app: encode output: %w", err)
	}
	return nil
}
