// Package cohort builds league dashboards: the top slice of a classic
// league's standings, each roster enriched with season-wide fold aggregates
// and the current captain, plus the viewer's own row when they sit outside
// the slice.
package cohort

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gwstat/fplboard/internal/aggregate"
	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/overlay"
)

// Feed is the slice of the upstream client the builder needs.
type Feed interface {
	Standings(ctx context.Context, league domain.LeagueID) ([]domain.LeagueEntry, error)
	Selections(ctx context.Context, roster domain.RosterID, round int) (domain.SelectionRecord, error)
	Profile(ctx context.Context, roster domain.RosterID) (domain.RosterProfile, error)
	History(ctx context.Context, roster domain.RosterID) (domain.RosterHistory, error)
	OverallLeaderTotal(ctx context.Context) (int, error)
}

// Builder assembles cohort views, memoized per tier in the persistent cache
// store. Round score records are fetched once per round and shared across
// every roster in the cohort; only the per-roster selection fetches scale
// with cohort size.
type Builder struct {
	feed   Feed
	rounds *aggregate.RoundSource
	store  domain.CacheStore
	leader domain.LeaderCache
	logger *slog.Logger
	limit  int
	now    func() time.Time
}

// NewBuilder creates a cohort builder. store and leader may be nil.
func NewBuilder(feed Feed, rounds *aggregate.RoundSource, store domain.CacheStore, leader domain.LeaderCache, limit int, logger *slog.Logger) *Builder {
	if limit <= 0 {
		limit = 8
	}
	return &Builder{
		feed:   feed,
		rounds: rounds,
		store:  store,
		leader: leader,
		logger: logger,
		limit:  limit,
		now:    time.Now,
	}
}

// Build returns the cohort view for a league: the top size rosters plus the
// viewer's row appended when viewer is nonzero and outside the slice. state
// supplies the current round and liveness; tier selects whether per-category
// breakdowns are included; baselines names the captain rows.
func (b *Builder) Build(ctx context.Context, league domain.LeagueID, size int, viewer domain.RosterID, baselines map[domain.EntityID]*domain.EntityBaseline, state domain.FreshnessState, tier domain.CohortTier) ([]domain.CohortSummary, error) {
	if league == 0 {
		return nil, fmt.Errorf("cohort: build: %w: league", domain.ErrMissingParam)
	}
	if size < 1 {
		return nil, fmt.Errorf("cohort: build: %w: size", domain.ErrMissingParam)
	}

	kind := domain.CacheKindCohortSummary
	if tier == domain.TierBreakdown {
		kind = domain.CacheKindCohortBreakdown
	}
	key := domain.CacheKey{
		Kind:       kind,
		League:     league,
		Roster:     viewer,
		Round:      state.Round,
		CohortSize: size,
	}
	if cached := b.lookup(ctx, key, state.LastUpdate); cached != nil {
		return cached, nil
	}

	standings, err := b.feed.Standings(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("cohort: standings: %w", err)
	}
	if len(standings) > size {
		standings = standings[:size]
	}

	entries := standings
	if viewer != 0 && !contains(standings, viewer) {
		row, err := b.viewerEntry(ctx, league, viewer)
		if err != nil {
			b.logger.Warn("viewer row unavailable",
				slog.Int64("roster", int64(viewer)),
				slog.String("error", err.Error()))
		} else {
			entries = append(entries, row)
		}
	}

	// One fetch per round for the whole cohort.
	rounds, _ := b.rounds.FanOut(ctx, state.Round)

	rows := make([]domain.CohortSummary, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for i, entry := range entries {
		g.Go(func() error {
			rows[i] = b.buildRow(gctx, entry, rounds, baselines, state, tier)
			return nil
		})
	}
	g.Wait()

	b.applyLeaderDeltas(ctx, rows, size)
	b.persist(ctx, key, rows)
	return rows, nil
}

// buildRow assembles one roster's summary: profile and season history, the
// season-wide selection fold against the shared round set, and the current
// captain. Per-roster fetch failures degrade the row to its standings
// identity instead of failing the cohort.
func (b *Builder) buildRow(ctx context.Context, entry domain.LeagueEntry, rounds map[int]domain.RoundScoreRecord, baselines map[domain.EntityID]*domain.EntityBaseline, state domain.FreshnessState, tier domain.CohortTier) domain.CohortSummary {
	row := domain.CohortSummary{
		Roster:      entry.Roster,
		EntryName:   entry.EntryName,
		PlayerName:  entry.PlayerName,
		Rank:        entry.Rank,
		LastRank:    entry.LastRank,
		TotalPoints: entry.TotalPoints,
	}

	var (
		wg      sync.WaitGroup
		profile domain.RosterProfile
		history domain.RosterHistory
		perr    error
		herr    error
	)
	wg.Add(2)
	go func() { defer wg.Done(); profile, perr = b.feed.Profile(ctx, entry.Roster) }()
	go func() { defer wg.Done(); history, herr = b.feed.History(ctx, entry.Roster) }()
	wg.Wait()

	if perr != nil {
		b.logger.Warn("cohort profile fetch failed",
			slog.Int64("roster", int64(entry.Roster)),
			slog.String("error", perr.Error()))
	} else {
		row.CountryCode = profile.CountryCode
	}
	if herr != nil {
		b.logger.Warn("cohort history fetch failed",
			slog.Int64("roster", int64(entry.Roster)),
			slog.String("error", herr.Error()))
	} else {
		row.OverallRank = history.OverallRank
		row.PreviousOverallRank = history.PreviousOverallRank
		row.SeasonBenchPoints = history.BenchPoints
		row.TransferCost = history.TransferCost
	}

	overlays := make(map[domain.EntityID]*domain.RosterOverlay)
	for round := 1; round <= state.Round; round++ {
		rec, ok := rounds[round]
		if !ok {
			continue
		}
		sel, err := b.feed.Selections(ctx, entry.Roster, round)
		if err != nil {
			b.logger.Warn("cohort picks fetch failed",
				slog.Int64("roster", int64(entry.Roster)),
				slog.Int("round", round),
				slog.String("error", err.Error()))
			continue
		}
		overlay.FoldRound(overlays, sel, rec)

		if round == state.Round {
			b.setCaptain(&row, sel, rec, baselines, state.IsLive)
		}
	}
	sumOverlays(&row, overlays, tier)
	return row
}

// sumOverlays folds the roster's per-entity overlays into the summary's
// flat aggregates.
func sumOverlays(row *domain.CohortSummary, overlays map[domain.EntityID]*domain.RosterOverlay, tier domain.CohortTier) {
	if tier == domain.TierBreakdown {
		row.Points = make(domain.PointsBreakdown)
	}
	for _, o := range overlays {
		row.RosterPoints += o.TotalPoints
		row.CaptainBonus += o.CaptainBonus
		row.Goals += o.Goals
		row.GoalsBenched += o.GoalsBenched
		row.Assists += o.Assists
		row.CleanSheets += o.CleanSheets
		row.Minutes += o.Minutes
		row.Bonus += o.Bonus
		row.YellowCards += o.YellowCards
		row.RedCards += o.RedCards
		row.DreamteamCount += o.DreamteamCount
		row.DefensiveContributionPoints += o.Points[domain.CategoryDefensiveContribution]
		if row.Points != nil {
			for c, pts := range o.Points {
				row.Points.Add(c, pts)
			}
		}
	}
}

// setCaptain fills the armband row from the current round's selection.
// While the round is live and the captain has not come on yet, the points
// are pending rather than zero.
func (b *Builder) setCaptain(row *domain.CohortSummary, sel domain.SelectionRecord, rec domain.RoundScoreRecord, baselines map[domain.EntityID]*domain.EntityBaseline, live bool) {
	var captain domain.EntityID
	weight := 0
	for id, w := range sel.Weights {
		if w >= domain.WeightCaptain {
			captain, weight = id, w
			break
		}
	}
	if weight == 0 {
		return
	}

	snap := domain.CaptainSnapshot{Entity: captain, Multiplier: weight}
	if base, ok := baselines[captain]; ok {
		snap.Name = base.Name
		snap.TeamName = base.TeamName
		snap.TeamCode = base.TeamCode
	}
	for i := range rec.Entities {
		es := &rec.Entities[i]
		if es.Entity != captain {
			continue
		}
		if live && es.Stats.Minutes == 0 {
			snap.Pending = true
			break
		}
		pts := es.Stats.TotalPoints * weight
		snap.Points = &pts
		break
	}
	row.Captain = snap
}

// viewerEntry synthesizes a standings row for a viewer outside the fetched
// slice, using their profile's rank within the league.
func (b *Builder) viewerEntry(ctx context.Context, league domain.LeagueID, viewer domain.RosterID) (domain.LeagueEntry, error) {
	profile, err := b.feed.Profile(ctx, viewer)
	if err != nil {
		return domain.LeagueEntry{}, err
	}
	entry := domain.LeagueEntry{
		Roster:      viewer,
		EntryName:   profile.EntryName,
		PlayerName:  profile.PlayerName,
		TotalPoints: profile.TotalPoints,
	}
	if lr, ok := profile.LeagueRanks[league]; ok {
		entry.Rank = lr.Rank
		entry.LastRank = lr.LastRank
	}
	return entry, nil
}

// applyLeaderDeltas fills each row's trailing figures. The cohort leader is
// the best season total among the fetched slice; the viewer's appended row
// measures against the same leader. The global leader total is cached
// independently of the oracle on its own short TTL.
func (b *Builder) applyLeaderDeltas(ctx context.Context, rows []domain.CohortSummary, size int) {
	if len(rows) == 0 {
		return
	}

	cohortMax := rows[0].TotalPoints
	for i := 1; i < len(rows) && i < size; i++ {
		if rows[i].TotalPoints > cohortMax {
			cohortMax = rows[i].TotalPoints
		}
	}

	globalTotal, err := b.leaderTotal(ctx)
	if err != nil {
		b.logger.Warn("global leader total unavailable", slog.String("error", err.Error()))
	}

	for i := range rows {
		rows[i].PointsBehindCohortLeader = rows[i].TotalPoints - cohortMax
		if err == nil {
			rows[i].PointsBehindGlobalLeader = rows[i].TotalPoints - globalTotal
		}
	}
}

func (b *Builder) leaderTotal(ctx context.Context) (int, error) {
	if b.leader != nil {
		if total, err := b.leader.GetLeaderTotal(ctx); err == nil {
			return total, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			b.logger.Warn("leader cache read failed", slog.String("error", err.Error()))
		}
	}
	total, err := b.feed.OverallLeaderTotal(ctx)
	if err != nil {
		return 0, err
	}
	if b.leader != nil {
		if err := b.leader.SetLeaderTotal(ctx, total); err != nil {
			b.logger.Warn("leader cache write failed", slog.String("error", err.Error()))
		}
	}
	return total, nil
}

func contains(entries []domain.LeagueEntry, roster domain.RosterID) bool {
	for _, e := range entries {
		if e.Roster == roster {
			return true
		}
	}
	return false
}

func (b *Builder) lookup(ctx context.Context, key domain.CacheKey, version time.Time) []domain.CohortSummary {
	if b.store == nil {
		return nil
	}
	entry, err := b.store.Get(ctx, key)
	if err == nil {
		err = entry.Validate(version)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrStale) {
			b.logger.Warn("cohort store read failed",
				slog.String("key", key.String()),
				slog.String("error", err.Error()))
		}
		return nil
	}
	var rows []domain.CohortSummary
	if err := json.Unmarshal(entry.Payload, &rows); err != nil {
		b.logger.Warn("discarding undecodable cohort entry",
			slog.String("key", key.String()))
		return nil
	}
	return rows
}

func (b *Builder) persist(ctx context.Context, key domain.CacheKey, rows []domain.CohortSummary) {
	if b.store == nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		b.logger.Warn("cohort encode failed", slog.String("error", err.Error()))
		return
	}
	if err := b.store.Put(ctx, key, payload, b.now()); err != nil {
		b.logger.Warn("cohort store write failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
	}
}
