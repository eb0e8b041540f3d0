package domain

import (
	"context"
	"fmt"
	"time"
)

// Cache kinds. Together with the optional round/roster/league/size parts
// they form the composite key family of the persistent cache store.
const (
	CacheKindGlobalPoints    = "global_points"
	CacheKindOverlay         = "overlay"
	CacheKindCohortSummary   = "cohort_summary"
	CacheKindCohortBreakdown = "cohort_breakdown"
)

// CacheKey is the composite key of one cached artifact. Unused parts stay
// zero; two keys are equal iff all five parts are equal.
type CacheKey struct {
	Kind       string
	Round      int
	Roster     RosterID
	League     LeagueID
	CohortSize int
}

// String renders the key in a stable, human-readable form for logs.
func (k CacheKey) String() string {
	s := k.Kind
	if k.League != 0 {
		s += fmt.Sprintf(":league%d", k.League)
	}
	if k.Roster != 0 {
		s += fmt.Sprintf(":roster%d", k.Roster)
	}
	if k.Round != 0 {
		s += fmt.Sprintf(":gw%d", k.Round)
	}
	if k.CohortSize != 0 {
		s += fmt.Sprintf(":top%d", k.CohortSize)
	}
	return s
}

// CacheEntry is a stored payload with the time it was fetched from upstream.
type CacheEntry struct {
	Payload     []byte
	LastFetched time.Time
}

// Validate returns ErrStale when the entry predates the oracle version and
// nil when it can serve a read.
func (e CacheEntry) Validate(version time.Time) error {
	if !Fresh(e.LastFetched, version) {
		return ErrStale
	}
	return nil
}

// CacheStore is the persistent keyed store shared by the aggregator, the
// overlay builder, and the cohort builder. Writes replace the whole payload;
// concurrent writers race last-write-wins, which is safe because every
// recomputation is idempotent.
type CacheStore interface {
	// Get returns the entry for key, or ErrNotFound on a miss. Validity
	// against the oracle is the caller's job via CacheEntry.Validate.
	Get(ctx context.Context, key CacheKey) (CacheEntry, error)
	// Put upserts the payload under key with the given fetch time.
	Put(ctx context.Context, key CacheKey, payload []byte, fetched time.Time) error
	// Prune deletes entries fetched before the cutoff and reports how many
	// rows were removed.
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Fresh reports whether a cached artifact fetched at lastFetched is still
// valid relative to the oracle's lastUpdate. This comparison is the single
// freshness rule for every tier, independent of the storage engine.
func Fresh(lastFetched, lastUpdate time.Time) bool {
	return !lastFetched.Before(lastUpdate)
}

// RoundCache is the hot tier for per-round score records. Entries expire on
// a short TTL rather than the oracle key, because a round record is safe to
// reuse for a few seconds even while live.
type RoundCache interface {
	GetRound(ctx context.Context, round int) (RoundScoreRecord, error)
	SetRound(ctx context.Context, rec RoundScoreRecord) error
}

// LeaderCache holds the independently cached global-leader total.
type LeaderCache interface {
	GetLeaderTotal(ctx context.Context) (int, error)
	SetLeaderTotal(ctx context.Context, total int) error
}

// SnapshotCache holds the raw season snapshot body under its long TTL.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context) (body []byte, fetched time.Time, err error)
	SetSnapshot(ctx context.Context, body []byte, fetched time.Time) error
}
