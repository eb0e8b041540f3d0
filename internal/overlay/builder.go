// Package overlay computes roster-relative views: what each selected entity
// contributed to one roster across the season, split by selection weight.
package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gwstat/fplboard/internal/aggregate"
	"github.com/gwstat/fplboard/internal/domain"
)

// SelectionFeed is the slice of the upstream client the builder needs.
type SelectionFeed interface {
	Selections(ctx context.Context, roster domain.RosterID, round int) (domain.SelectionRecord, error)
}

// Builder folds a roster's per-round selections against the live round feeds
// into per-entity overlays, memoized in the persistent cache store.
type Builder struct {
	selections SelectionFeed
	rounds     *aggregate.RoundSource
	store      domain.CacheStore
	logger     *slog.Logger
	limit      int
	now        func() time.Time
}

// NewBuilder creates an overlay builder. store may be nil to disable
// memoization.
func NewBuilder(selections SelectionFeed, rounds *aggregate.RoundSource, store domain.CacheStore, limit int, logger *slog.Logger) *Builder {
	if limit <= 0 {
		limit = 8
	}
	return &Builder{
		selections: selections,
		rounds:     rounds,
		store:      store,
		logger:     logger,
		limit:      limit,
		now:        time.Now,
	}
}

// envelope is the persisted form of one build.
type envelope struct {
	Overlays      map[domain.EntityID]*domain.RosterOverlay `json:"overlays"`
	SkippedRounds []int                                     `json:"skipped_rounds,omitempty"`
}

// Build folds rounds 1..upto for one roster. baselines supplies entity costs
// for the derived rates. Rounds whose picks or scores cannot be fetched are
// skipped and reported; incomplete builds are not persisted.
func (b *Builder) Build(ctx context.Context, roster domain.RosterID, baselines map[domain.EntityID]*domain.EntityBaseline, upto int, version time.Time) (map[domain.EntityID]*domain.RosterOverlay, []domain.RoundError, error) {
	if roster == 0 {
		return nil, nil, fmt.Errorf("overlay: build: %w: roster", domain.ErrMissingParam)
	}
	if upto < 1 {
		return nil, nil, fmt.Errorf("overlay: build: %w: round", domain.ErrMissingParam)
	}

	key := domain.CacheKey{Kind: domain.CacheKindOverlay, Roster: roster, Round: upto}
	if env := b.lookup(ctx, key, version); env != nil {
		return env.Overlays, nil, nil
	}

	type roundInput struct {
		selection domain.SelectionRecord
		scores    domain.RoundScoreRecord
	}

	var (
		mu      sync.Mutex
		inputs  = make(map[int]roundInput, upto)
		skipped []domain.RoundError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for round := 1; round <= upto; round++ {
		g.Go(func() error {
			sel, err := b.selections.Selections(gctx, roster, round)
			if err == nil {
				var scores domain.RoundScoreRecord
				scores, err = b.rounds.Round(gctx, round)
				if err == nil {
					mu.Lock()
					inputs[round] = roundInput{selection: sel, scores: scores}
					mu.Unlock()
					return nil
				}
			}
			mu.Lock()
			skipped = append(skipped, domain.RoundError{Round: round, Err: err})
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Round < skipped[j].Round })

	overlays := make(map[domain.EntityID]*domain.RosterOverlay)
	for round := 1; round <= upto; round++ {
		in, ok := inputs[round]
		if !ok {
			continue
		}
		FoldRound(overlays, in.selection, in.scores)
	}
	for id, o := range overlays {
		cost := 0
		if base, ok := baselines[id]; ok {
			cost = base.Cost
		}
		o.DeriveRates(cost)
	}

	if len(skipped) == 0 {
		b.persist(ctx, key, &envelope{Overlays: overlays})
	}
	return overlays, skipped, nil
}

// FoldRound applies one round's selections to the overlay map. Weight zero
// accrues only the benched counters; positive weights accrue the fielded
// aggregates plus the deduplicated explanation walk at weight one, with the
// captain surplus tracked separately. The cohort builder reuses this fold
// with its shared round set.
func FoldRound(overlays map[domain.EntityID]*domain.RosterOverlay, sel domain.SelectionRecord, scores domain.RoundScoreRecord) {
	for i := range scores.Entities {
		es := &scores.Entities[i]
		weight, picked := sel.Weight(es.Entity)
		if !picked {
			continue
		}

		o, ok := overlays[es.Entity]
		if !ok {
			o = domain.NewRosterOverlay(es.Entity)
			overlays[es.Entity] = o
		}
		st := &es.Stats

		if weight == domain.WeightBenched {
			o.MinutesBenched += st.Minutes
			o.GoalsBenched += st.Goals
			o.AssistsBenched += st.Assists
			if st.Starts > 0 {
				o.StartsBenched += st.Starts
			}
			o.BenchPoints += st.TotalPoints
			continue
		}

		if st.Minutes > 0 {
			o.Appearances++
		}
		o.Minutes += st.Minutes
		o.Goals += st.Goals
		o.Assists += st.Assists
		o.Starts += st.Starts
		o.CleanSheets += st.CleanSheets
		o.GoalsConceded += st.GoalsConceded
		o.OwnGoals += st.OwnGoals
		o.PenaltiesSaved += st.PenaltiesSaved
		o.PenaltiesMissed += st.PenaltiesMissed
		o.YellowCards += st.YellowCards
		o.RedCards += st.RedCards
		o.Saves += st.Saves
		o.Bonus += st.Bonus
		o.BPS += st.BPS
		o.CBI += st.CBI
		o.Tackles += st.Tackles
		o.Recoveries += st.Recoveries
		o.DefensiveContribution += st.DefensiveContribution
		o.ExpectedGoals += st.ExpectedGoals
		o.ExpectedAssists += st.ExpectedAssists
		o.ExpectedInvolvements += st.ExpectedGoals + st.ExpectedAssists
		o.ExpectedGoalsConceded += st.ExpectedGoalsConceded
		if st.InDreamteam {
			o.DreamteamCount++
		}

		base := 0
		for _, e := range aggregate.Dedupe(es.Explain) {
			o.Points.Add(e.Category, e.Points)
			base += e.Points
		}
		o.TotalPoints += base

		if weight >= domain.WeightCaptain {
			o.TimesCaptained++
			o.GoalsCaptained += st.Goals
			o.AssistsCaptained += st.Assists
			o.CaptainBonus += base * (weight - 1)
		}
	}
}

func (b *Builder) lookup(ctx context.Context, key domain.CacheKey, version time.Time) *envelope {
	if b.store == nil {
		return nil
	}
	entry, err := b.store.Get(ctx, key)
	if err == nil {
		err = entry.Validate(version)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrStale) {
			b.logger.Warn("overlay store read failed",
				slog.String("key", key.String()),
				slog.String("error", err.Error()))
		}
		return nil
	}
	var env envelope
	if err := json.Unmarshal(entry.Payload, &env); err != nil {
		b.logger.Warn("discarding undecodable overlay entry",
			slog.String("key", key.String()))
		return nil
	}
	return &env
}

func (b *Builder) persist(ctx context.Context, key domain.CacheKey, env *envelope) {
	if b.store == nil {
		return
	}
	payload, err := json.Marshal(env)
	if err != nil {
		b.logger.Warn("overlay encode failed", slog.String("error", err.Error()))
		return
	}
	if err := b.store.Put(ctx, key, payload, b.now()); err != nil {
		b.logger.Warn("overlay store write failed",
			slog.String("key", key.String()),
			slog.String("error", err.Error()))
	}
}
