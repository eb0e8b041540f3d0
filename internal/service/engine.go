// Package service exposes the engine's entry points to callers: the global
// baseline, roster overlays, league cohorts, and the query layer over them.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gwstat/fplboard/internal/aggregate"
	"github.com/gwstat/fplboard/internal/cohort"
	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/overlay"
	"github.com/gwstat/fplboard/internal/query"
	"github.com/gwstat/fplboard/internal/snapshot"
	"github.com/gwstat/fplboard/internal/status"
)

// Engine wires the oracle, the snapshot service, and the three builders
// behind a small surface the presentation layer calls.
type Engine struct {
	oracle     *status.Oracle
	snapshots  *snapshot.Service
	aggregator *aggregate.Aggregator
	overlays   *overlay.Builder
	cohorts    *cohort.Builder
	logger     *slog.Logger

	defaultCohortSize int
}

// NewEngine creates an engine from its already-wired parts.
func NewEngine(oracle *status.Oracle, snapshots *snapshot.Service, aggregator *aggregate.Aggregator, overlays *overlay.Builder, cohorts *cohort.Builder, defaultCohortSize int, logger *slog.Logger) *Engine {
	if defaultCohortSize < 1 {
		defaultCohortSize = 50
	}
	return &Engine{
		oracle:            oracle,
		snapshots:         snapshots,
		aggregator:        aggregator,
		overlays:          overlays,
		cohorts:           cohorts,
		logger:            logger,
		defaultCohortSize: defaultCohortSize,
	}
}

// Status returns the oracle's current freshness state.
func (e *Engine) Status(ctx context.Context) (domain.FreshnessState, error) {
	return e.oracle.State(ctx)
}

// BaselineResult is a finished global aggregation pass.
type BaselineResult struct {
	Entities map[domain.EntityID]*domain.EntityBaseline
	State    domain.FreshnessState
	// SkippedRounds lists rounds absent from the points breakdowns.
	SkippedRounds []int
}

// Baseline builds the entity directory with season-to-date points breakdowns
// applied. During upstream maintenance it fails with ErrMaintenance rather
// than serving breakdowns of unknown vintage.
func (e *Engine) Baseline(ctx context.Context) (*BaselineResult, error) {
	state, round, err := e.currentRound(ctx)
	if err != nil {
		return nil, err
	}

	baselines, err := e.snapshots.Baselines(ctx)
	if err != nil {
		return nil, err
	}

	result, err := e.aggregator.GlobalPoints(ctx, round, state.LastUpdate)
	if err != nil {
		return nil, err
	}
	aggregate.Apply(baselines, result)

	return &BaselineResult{
		Entities:      baselines,
		State:         state,
		SkippedRounds: result.SkippedRounds,
	}, nil
}

// OverlayResult is a finished roster overlay pass.
type OverlayResult struct {
	Roster   domain.RosterID
	Entities map[domain.EntityID]*domain.RosterOverlay
	State    domain.FreshnessState
	Skipped  []domain.RoundError
}

// RosterOverlay builds the roster-relative view for one roster.
func (e *Engine) RosterOverlay(ctx context.Context, roster domain.RosterID) (*OverlayResult, error) {
	if roster == 0 {
		return nil, fmt.Errorf("service: roster overlay: %w: roster", domain.ErrMissingParam)
	}

	// Roster ids run from 1 to the season's registration count; reject the
	// rest before spending a fetch per round on them.
	total, err := e.snapshots.TotalRosters(ctx)
	if err != nil {
		return nil, err
	}
	if roster < 1 || int(roster) > total {
		return nil, fmt.Errorf("service: roster overlay: roster %d: %w", roster, domain.ErrNotFound)
	}

	state, round, err := e.currentRound(ctx)
	if err != nil {
		return nil, err
	}

	baselines, err := e.snapshots.Baselines(ctx)
	if err != nil {
		return nil, err
	}

	overlays, skipped, err := e.overlays.Build(ctx, roster, baselines, round, state.LastUpdate)
	if err != nil {
		return nil, err
	}

	return &OverlayResult{
		Roster:   roster,
		Entities: overlays,
		State:    state,
		Skipped:  skipped,
	}, nil
}

// Cohort builds the league view. size <= 0 selects the configured default;
// viewer may be zero when the caller has no roster of their own.
func (e *Engine) Cohort(ctx context.Context, league domain.LeagueID, size int, viewer domain.RosterID, tier domain.CohortTier) ([]domain.CohortSummary, error) {
	if size <= 0 {
		size = e.defaultCohortSize
	}
	if tier == "" {
		tier = domain.TierSummary
	}

	state, _, err := e.currentRound(ctx)
	if err != nil {
		return nil, err
	}

	baselines, err := e.snapshots.Baselines(ctx)
	if err != nil {
		return nil, err
	}

	return e.cohorts.Build(ctx, league, size, viewer, baselines, state, tier)
}

// Query runs the filter/sort pipeline. Roster-relative variants require a
// roster; the global variant ignores it.
func (e *Engine) Query(ctx context.Context, roster domain.RosterID, opts query.Options) (*query.Result, error) {
	base, err := e.Baseline(ctx)
	if err != nil {
		return nil, err
	}

	var overlays map[domain.EntityID]*domain.RosterOverlay
	if opts.Variant != query.VariantGlobal {
		if roster == 0 {
			return nil, fmt.Errorf("service: query: %w: roster", domain.ErrMissingParam)
		}
		result, err := e.RosterOverlay(ctx, roster)
		if err != nil {
			return nil, err
		}
		overlays = result.Entities
	}

	return query.Run(base.Entities, overlays, opts)
}

// TeamTable folds the merged rows into one row per club. roster may be
// zero; the roster-relative columns then stay zero and only the global
// sums are filled.
func (e *Engine) TeamTable(ctx context.Context, roster domain.RosterID) ([]query.TeamRow, error) {
	base, err := e.Baseline(ctx)
	if err != nil {
		return nil, err
	}

	var overlays map[domain.EntityID]*domain.RosterOverlay
	if roster != 0 {
		result, err := e.RosterOverlay(ctx, roster)
		if err != nil {
			return nil, err
		}
		overlays = result.Entities
	}

	return query.BuildTeams(base.Entities, overlays), nil
}

// TotalRosters reports how many rosters the season has registered.
func (e *Engine) TotalRosters(ctx context.Context) (int, error) {
	return e.snapshots.TotalRosters(ctx)
}

// currentRound resolves the freshness state and the round to aggregate up
// to. The snapshot's calendar is authoritative for preseason detection.
func (e *Engine) currentRound(ctx context.Context) (domain.FreshnessState, int, error) {
	state, err := e.oracle.State(ctx)
	if err != nil {
		return domain.FreshnessState{}, 0, err
	}
	if state.IsMaintenance {
		return state, 0, fmt.Errorf("service: %w", domain.ErrMaintenance)
	}

	round, err := e.snapshots.CurrentRound(ctx)
	if err != nil {
		return state, 0, err
	}
	// The status feed can run a beat ahead of the calendar around round
	// boundaries; trust the higher of the two.
	if state.Round > round {
		round = state.Round
	}
	state.Round = round
	return state, round, nil
}
