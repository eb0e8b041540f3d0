package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gwstat/fplboard/internal/domain"
)

// defaultFanOut bounds concurrent round fetches against the upstream.
const defaultFanOut = 8

// ScoreFeed is the slice of the upstream client the round source needs.
type ScoreFeed interface {
	RoundScores(ctx context.Context, round int) (domain.RoundScoreRecord, error)
}

// RoundSource serves per-round score records through the short-TTL hot cache
// and fans out over round ranges with bounded concurrency.
type RoundSource struct {
	feed   ScoreFeed
	cache  domain.RoundCache
	logger *slog.Logger
	limit  int
}

// NewRoundSource creates a round source. cache may be nil, in which case
// every round is fetched from the feed.
func NewRoundSource(feed ScoreFeed, cache domain.RoundCache, limit int, logger *slog.Logger) *RoundSource {
	if limit <= 0 {
		limit = defaultFanOut
	}
	return &RoundSource{feed: feed, cache: cache, logger: logger, limit: limit}
}

// Round returns one round's score record, cache-first.
func (s *RoundSource) Round(ctx context.Context, round int) (domain.RoundScoreRecord, error) {
	if s.cache != nil {
		if rec, err := s.cache.GetRound(ctx, round); err == nil {
			return rec, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("round cache read failed",
				slog.Int("round", round),
				slog.String("error", err.Error()))
		}
	}

	rec, err := s.feed.RoundScores(ctx, round)
	if err != nil {
		return domain.RoundScoreRecord{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetRound(ctx, rec); err != nil {
			s.logger.Warn("round cache write failed",
				slog.Int("round", round),
				slog.String("error", err.Error()))
		}
	}
	return rec, nil
}

// FanOut fetches rounds 1..upto concurrently. Failed rounds are skipped and
// reported; the pass always completes with whatever rounds succeeded.
func (s *RoundSource) FanOut(ctx context.Context, upto int) (map[int]domain.RoundScoreRecord, []domain.RoundError) {
	passID := uuid.NewString()
	s.logger.Debug("round fan-out start",
		slog.String("pass", passID),
		slog.Int("upto", upto))

	var (
		mu      sync.Mutex
		rounds  = make(map[int]domain.RoundScoreRecord, upto)
		skipped []domain.RoundError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for round := 1; round <= upto; round++ {
		g.Go(func() error {
			rec, err := s.Round(gctx, round)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				skipped = append(skipped, domain.RoundError{Round: round, Err: err})
				return nil
			}
			rounds[round] = rec
			return nil
		})
	}
	g.Wait()

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Round < skipped[j].Round })
	for _, re := range skipped {
		s.logger.Warn("round skipped",
			slog.String("pass", passID),
			slog.Int("round", re.Round),
			slog.String("error", re.Err.Error()))
	}
	s.logger.Debug("round fan-out done",
		slog.String("pass", passID),
		slog.Int("fetched", len(rounds)),
		slog.Int("skipped", len(skipped)))

	return rounds, skipped
}
