package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gwstat/fplboard/internal/domain"
)

// snapshotTTL governs the season snapshot refresh cadence. Season metadata
// changes far less often than live scores, so this tier is independent of
// the freshness oracle.
const snapshotTTL = time.Hour

// SnapshotCache implements domain.SnapshotCache, storing the raw snapshot
// body together with its fetch time.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
// ttl <= 0 selects the default.
func NewSnapshotCache(c *Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = snapshotTTL
	}
	return &SnapshotCache{rdb: c.Underlying(), ttl: ttl}
}

const snapshotKey = "snapshot:season"

// snapshotEnvelope wraps the raw body so the fetch time survives the trip.
type snapshotEnvelope struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Body      json.RawMessage `json:"body"`
}

// SetSnapshot stores the raw snapshot body under the long TTL.
func (sc *SnapshotCache) SetSnapshot(ctx context.Context, body []byte, fetched time.Time) error {
	data, err := json.Marshal(snapshotEnvelope{FetchedAt: fetched, Body: body})
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot: %w", err)
	}
	if err := sc.rdb.Set(ctx, snapshotKey, data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the raw snapshot body and its fetch time. It returns
// domain.ErrNotFound when the key does not exist.
func (sc *SnapshotCache) GetSnapshot(ctx context.Context) ([]byte, time.Time, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, domain.ErrNotFound
		}
		return nil, time.Time{}, fmt.Errorf("redis: get snapshot: %w", err)
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, time.Time{}, fmt.Errorf("redis: unmarshal snapshot: %w", err)
	}
	return env.Body, env.FetchedAt, nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
