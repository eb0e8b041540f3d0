package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gwstat/fplboard/internal/domain"
)

// CacheStore implements domain.CacheStore over the cache_entries table.
// Writes are whole-payload upserts; two callers racing on the same key
// resolve last-write-wins, which is safe because every recomputation is
// idempotent.
type CacheStore struct {
	pool *pgxpool.Pool
}

// NewCacheStore creates a CacheStore backed by the given connection pool.
func NewCacheStore(pool *pgxpool.Pool) *CacheStore {
	return &CacheStore{pool: pool}
}

// Get returns the entry for key, or domain.ErrNotFound on a miss.
func (s *CacheStore) Get(ctx context.Context, key domain.CacheKey) (domain.CacheEntry, error) {
	const query = `
		SELECT payload, last_fetched
		FROM cache_entries
		WHERE kind = $1 AND round = $2 AND roster_id = $3
		  AND league_id = $4 AND cohort_size = $5`

	var entry domain.CacheEntry
	err := s.pool.QueryRow(ctx, query,
		key.Kind, key.Round, key.Roster, key.League, key.CohortSize,
	).Scan(&entry.Payload, &entry.LastFetched)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CacheEntry{}, domain.ErrNotFound
		}
		return domain.CacheEntry{}, fmt.Errorf("postgres: get cache entry %s: %w", key, err)
	}
	return entry, nil
}

// Put upserts the payload under key with the given fetch time.
func (s *CacheStore) Put(ctx context.Context, key domain.CacheKey, payload []byte, fetched time.Time) error {
	const query = `
		INSERT INTO cache_entries (
			kind, round, roster_id, league_id, cohort_size,
			payload, last_fetched
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (kind, round, roster_id, league_id, cohort_size) DO UPDATE SET
			payload      = EXCLUDED.payload,
			last_fetched = EXCLUDED.last_fetched`

	_, err := s.pool.Exec(ctx, query,
		key.Kind, key.Round, key.Roster, key.League, key.CohortSize,
		payload, fetched,
	)
	if err != nil {
		return fmt.Errorf("postgres: put cache entry %s: %w", key, err)
	}
	return nil
}

// Prune deletes entries fetched before the cutoff and reports how many rows
// were removed.
func (s *CacheStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM cache_entries WHERE last_fetched < $1", before)
	if err != nil {
		return 0, fmt.Errorf("postgres: prune cache entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.CacheStore = (*CacheStore)(nil)
