package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
)

// Result is a season-to-date fold of every entity's explanation entries.
type Result struct {
	// Points maps each scored entity to its category breakdown summed over
	// all folded rounds.
	Points map[domain.EntityID]domain.PointsBreakdown `json:"points"`
	// Rounds is how many rounds the fold covers.
	Rounds int `json:"rounds"`
	// SkippedRounds lists rounds whose fetch failed and are absent from the
	// fold.
	SkippedRounds []int `json:"skipped_rounds,omitempty"`
}

// Complete reports whether every requested round made it into the fold.
func (r *Result) Complete() bool { return len(r.SkippedRounds) == 0 }

// Aggregator computes global points breakdowns, memoized in the persistent
// cache store under the oracle's version.
type Aggregator struct {
	source *RoundSource
	store  domain.CacheStore
	logger *slog.Logger
	now    func() time.Time
}

// NewAggregator creates an aggregator. store may be nil to disable
// memoization.
func NewAggregator(source *RoundSource, store domain.CacheStore, logger *slog.Logger) *Aggregator {
	return &Aggregator{source: source, store: store, logger: logger, now: time.Now}
}

// GlobalPoints folds rounds 1..upto into per-entity breakdowns. A cached
// fold is reused when it was computed at or after version; recomputed folds
// are persisted only when complete, so a transiently failed round is retried
// on the next call.
func (a *Aggregator) GlobalPoints(ctx context.Context, upto int, version time.Time) (*Result, error) {
	if upto < 1 {
		return nil, fmt.Errorf("aggregate: global points: %w: round", domain.ErrMissingParam)
	}

	key := domain.CacheKey{Kind: domain.CacheKindGlobalPoints, Round: upto}
	if cached := a.lookup(ctx, key, version); cached != nil {
		return cached, nil
	}

	rounds, skipped := a.source.FanOut(ctx, upto)
	result := &Result{Points: make(map[domain.EntityID]domain.PointsBreakdown)}
	for _, rec := range rounds {
		foldRound(result.Points, rec)
	}
	result.Rounds = len(rounds)
	for _, re := range skipped {
		result.SkippedRounds = append(result.SkippedRounds, re.Round)
	}

	if result.Complete() {
		a.persist(ctx, key, result)
	}
	return result, nil
}

// Apply rewrites each baseline's breakdown from the fold. Breakdowns are
// reset first so entities missing from the fold end up with empty maps, not
// stale ones.
func Apply(baselines map[domain.EntityID]*domain.EntityBaseline, result *Result) {
	for _, b := range baselines {
		b.Points = make(domain.PointsBreakdown)
		b.DefensiveContributionCount = 0
	}
	for id, breakdown := range result.Points {
		b, ok := baselines[id]
		if !ok {
			continue
		}
		b.Points = breakdown.Clone()
		// Each credited contribution is worth two points.
		b.DefensiveContributionCount = b.Points[domain.CategoryDefensiveContribution] / 2
	}
}

// foldRound adds one round's deduplicated explanation entries into acc.
func foldRound(acc map[domain.EntityID]domain.PointsBreakdown, rec domain.RoundScoreRecord) {
	for i := range rec.Entities {
		es := &rec.Entities[i]
		breakdown, ok := acc[es.Entity]
		if !ok {
			breakdown = make(domain.PointsBreakdown)
			acc[es.Entity] = breakdown
		}
		for _, e := range Dedupe(es.Explain) {
			breakdown.Add(e.Category, e.Points)
		}
	}
}

func (a *Aggregator) lookup(ctx context.Context, key domain.CacheKey, version time.Time) *Result {
	if a.store == nil {
		return nil
	}
	entry, err := a.store.Get(ctx, key)
	if err == nil {
		err = entry.Validate(version)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrStale) {
			a.logger.Warn("aggregate store read failed",
				slog.String("key", key.String()),
				slog.String("error", err.Error()))
		}
		return nil
	}
	var result Result
	if err := json.Unmarshal(entry.Payload, &result); err != nil {
		a.logger.Warn("discarding undecodable aggregate entry",
			slog.String("key", key.String()))
		return nil
	}
	return &result
}

func (a *Aggregator) persist(ctx context.Context, key domain.CacheKey, result *Result) {
	if a.store == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		a.logger.Warn("aggregate encode failed", slog.String("error", err.Error()))
		return
	}
	if err := a.store.Put(ctx, key, payload, a.now()); err != nil {
		a.logger.Warn("aggregate store write failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
	}
}
