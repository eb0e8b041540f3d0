package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
)

type fakeScoreFeed struct {
	mu     sync.Mutex
	rounds map[int]domain.RoundScoreRecord
	fail   map[int]error
	calls  int
}

func (f *fakeScoreFeed) RoundScores(ctx context.Context, round int) (domain.RoundScoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.fail[round]; ok {
		return domain.RoundScoreRecord{}, err
	}
	rec, ok := f.rounds[round]
	if !ok {
		return domain.RoundScoreRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeScoreFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memStore is an in-memory domain.CacheStore for tests.
type memStore struct {
	mu      sync.Mutex
	entries map[domain.CacheKey]domain.CacheEntry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[domain.CacheKey]domain.CacheEntry)}
}

func (s *memStore) Get(ctx context.Context, key domain.CacheKey) (domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return domain.CacheEntry{}, domain.ErrNotFound
	}
	return entry, nil
}

func (s *memStore) Put(ctx context.Context, key domain.CacheKey, payload []byte, fetched time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = domain.CacheEntry{Payload: payload, LastFetched: fetched}
	return nil
}

func (s *memStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, entry := range s.entries {
		if entry.LastFetched.Before(before) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scoreRecord(round int, entities ...domain.EntityRoundScore) domain.RoundScoreRecord {
	return domain.RoundScoreRecord{Round: round, Entities: entities}
}

func goalEntry(fixture, pts int) domain.ExplainEntry {
	return domain.ExplainEntry{Fixture: fixture, Category: domain.CategoryGoalsScored, Points: pts}
}

func TestGlobalPointsFold(t *testing.T) {
	feed := &fakeScoreFeed{rounds: map[int]domain.RoundScoreRecord{
		// A duplicated line in round 1 and a genuine double round in 2.
		1: scoreRecord(1, domain.EntityRoundScore{
			Entity:  10,
			Explain: []domain.ExplainEntry{goalEntry(101, 4), goalEntry(101, 4)},
		}),
		2: scoreRecord(2, domain.EntityRoundScore{
			Entity:  10,
			Explain: []domain.ExplainEntry{goalEntry(201, 4), goalEntry(202, 4)},
		}),
	}}
	agg := NewAggregator(NewRoundSource(feed, nil, 4, testLogger()), nil, testLogger())

	result, err := agg.GlobalPoints(context.Background(), 2, time.Now())
	if err != nil {
		t.Fatalf("GlobalPoints: %v", err)
	}
	if !result.Complete() || result.Rounds != 2 {
		t.Fatalf("result = %+v, want 2 complete rounds", result)
	}
	got := result.Points[10][domain.CategoryGoalsScored]
	if got != 12 {
		t.Errorf("goal points = %d, want 12 (4 deduped + 4 + 4)", got)
	}
}

func TestGlobalPointsMemoization(t *testing.T) {
	ctx := context.Background()
	feed := &fakeScoreFeed{rounds: map[int]domain.RoundScoreRecord{
		1: scoreRecord(1, domain.EntityRoundScore{
			Entity:  10,
			Explain: []domain.ExplainEntry{goalEntry(101, 4)},
		}),
	}}
	store := newMemStore()
	agg := NewAggregator(NewRoundSource(feed, nil, 4, testLogger()), store, testLogger())

	version := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	if _, err := agg.GlobalPoints(ctx, 1, version); err != nil {
		t.Fatalf("GlobalPoints: %v", err)
	}
	fetched := feed.callCount()

	// Same version: the persisted fold is reused without touching the feed.
	result, err := agg.GlobalPoints(ctx, 1, version)
	if err != nil {
		t.Fatalf("GlobalPoints: %v", err)
	}
	if feed.callCount() != fetched {
		t.Errorf("feed hit %d more times on a warm cache", feed.callCount()-fetched)
	}
	if result.Points[10][domain.CategoryGoalsScored] != 4 {
		t.Errorf("cached fold = %+v", result.Points[10])
	}

	// A newer version invalidates the entry and recomputes.
	if _, err := agg.GlobalPoints(ctx, 1, version.Add(time.Minute)); err != nil {
		t.Fatalf("GlobalPoints: %v", err)
	}
	if feed.callCount() == fetched {
		t.Error("stale entry served after the version advanced")
	}
}

func TestGlobalPointsSkipsFailedRounds(t *testing.T) {
	feed := &fakeScoreFeed{
		rounds: map[int]domain.RoundScoreRecord{
			1: scoreRecord(1, domain.EntityRoundScore{
				Entity:  10,
				Explain: []domain.ExplainEntry{goalEntry(101, 4)},
			}),
		},
		fail: map[int]error{2: errors.New("bad gateway")},
	}
	store := newMemStore()
	agg := NewAggregator(NewRoundSource(feed, nil, 4, testLogger()), store, testLogger())

	result, err := agg.GlobalPoints(context.Background(), 2, time.Now())
	if err != nil {
		t.Fatalf("GlobalPoints: %v", err)
	}
	if result.Complete() {
		t.Fatal("Complete() = true with a failed round")
	}
	if len(result.SkippedRounds) != 1 || result.SkippedRounds[0] != 2 {
		t.Errorf("SkippedRounds = %v, want [2]", result.SkippedRounds)
	}
	if result.Points[10][domain.CategoryGoalsScored] != 4 {
		t.Errorf("surviving rounds not folded: %+v", result.Points[10])
	}
	// Incomplete folds are not persisted, so the failed round retries later.
	if store.len() != 0 {
		t.Errorf("incomplete fold persisted: %d entries", store.len())
	}
}

func TestGlobalPointsValidation(t *testing.T) {
	agg := NewAggregator(NewRoundSource(&fakeScoreFeed{}, nil, 4, testLogger()), nil, testLogger())
	_, err := agg.GlobalPoints(context.Background(), 0, time.Now())
	if !errors.Is(err, domain.ErrMissingParam) {
		t.Errorf("err = %v, want ErrMissingParam", err)
	}
}

func TestApply(t *testing.T) {
	baselines := map[domain.EntityID]*domain.EntityBaseline{
		10: {ID: 10, Points: domain.PointsBreakdown{domain.CategoryBonus: 99}},
		20: {ID: 20, Points: domain.PointsBreakdown{domain.CategoryBonus: 99}, DefensiveContributionCount: 5},
	}
	result := &Result{Points: map[domain.EntityID]domain.PointsBreakdown{
		10: {
			domain.CategoryGoalsScored:           8,
			domain.CategoryDefensiveContribution: 6,
		},
		// Entity 30 has no baseline and is ignored.
		30: {domain.CategoryGoalsScored: 4},
	}}

	Apply(baselines, result)

	if got := baselines[10].Points[domain.CategoryGoalsScored]; got != 8 {
		t.Errorf("entity 10 goals points = %d, want 8", got)
	}
	if got := baselines[10].DefensiveContributionCount; got != 3 {
		t.Errorf("entity 10 contribution count = %d, want 3", got)
	}
	// An entity absent from the fold is reset, not left stale.
	if len(baselines[20].Points) != 0 || baselines[20].DefensiveContributionCount != 0 {
		t.Errorf("entity 20 not reset: %+v", baselines[20])
	}
}

func TestFanOutBoundedFetch(t *testing.T) {
	feed := &fakeScoreFeed{rounds: map[int]domain.RoundScoreRecord{}}
	for round := 1; round <= 10; round++ {
		feed.rounds[round] = scoreRecord(round)
	}
	src := NewRoundSource(feed, nil, 3, testLogger())

	rounds, skipped := src.FanOut(context.Background(), 10)
	if len(skipped) != 0 {
		t.Fatalf("skipped = %v, want none", skipped)
	}
	if len(rounds) != 10 {
		t.Fatalf("got %d rounds, want 10", len(rounds))
	}
	for round := 1; round <= 10; round++ {
		if rounds[round].Round != round {
			t.Errorf("round %d carries record for %d", round, rounds[round].Round)
		}
	}
	if feed.callCount() != 10 {
		t.Errorf("feed hit %d times, want once per round", feed.callCount())
	}
}

// roundCacheStub wraps a map as a domain.RoundCache.
type roundCacheStub struct {
	mu     sync.Mutex
	rounds map[int]domain.RoundScoreRecord
	sets   int
}

func (c *roundCacheStub) GetRound(ctx context.Context, round int) (domain.RoundScoreRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.rounds[round]
	if !ok {
		return domain.RoundScoreRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (c *roundCacheStub) SetRound(ctx context.Context, rec domain.RoundScoreRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rounds[rec.Round] = rec
	c.sets++
	return nil
}

func TestRoundCacheFirst(t *testing.T) {
	ctx := context.Background()
	feed := &fakeScoreFeed{rounds: map[int]domain.RoundScoreRecord{1: scoreRecord(1)}}
	cache := &roundCacheStub{rounds: make(map[int]domain.RoundScoreRecord)}
	src := NewRoundSource(feed, cache, 4, testLogger())

	if _, err := src.Round(ctx, 1); err != nil {
		t.Fatalf("Round: %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache writes = %d, want 1", cache.sets)
	}
	if _, err := src.Round(ctx, 1); err != nil {
		t.Fatalf("Round: %v", err)
	}
	if feed.callCount() != 1 {
		t.Errorf("feed hit %d times, want 1 with a warm cache", feed.callCount())
	}
}
