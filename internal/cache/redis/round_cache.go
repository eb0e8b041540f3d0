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

// roundTTL keeps a live round's record reusable for a minute. The record is
// safe to serve slightly stale because the freshness oracle, not this tier,
// decides when derived artifacts must be rebuilt.
const roundTTL = 60 * time.Second

// RoundCache implements domain.RoundCache with JSON-serialized round records.
//
// Key schema:
//
//	round:{n} - JSON RoundScoreRecord
type RoundCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRoundCache creates a RoundCache backed by the given Client. ttl <= 0
// selects the default.
func NewRoundCache(c *Client, ttl time.Duration) *RoundCache {
	if ttl <= 0 {
		ttl = roundTTL
	}
	return &RoundCache{rdb: c.Underlying(), ttl: ttl}
}

func roundKey(round int) string { return fmt.Sprintf("round:%d", round) }

// SetRound stores a round record under its TTL.
func (rc *RoundCache) SetRound(ctx context.Context, rec domain.RoundScoreRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal round %d: %w", rec.Round, err)
	}
	if err := rc.rdb.Set(ctx, roundKey(rec.Round), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set round %d: %w", rec.Round, err)
	}
	return nil
}

// GetRound retrieves a round record. It returns domain.ErrNotFound when the
// key does not exist.
func (rc *RoundCache) GetRound(ctx context.Context, round int) (domain.RoundScoreRecord, error) {
	data, err := rc.rdb.Get(ctx, roundKey(round)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.RoundScoreRecord{}, domain.ErrNotFound
		}
		return domain.RoundScoreRecord{}, fmt.Errorf("redis: get round %d: %w", round, err)
	}

	var rec domain.RoundScoreRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.RoundScoreRecord{}, fmt.Errorf("redis: unmarshal round %d: %w", round, err)
	}
	return rec, nil
}

// Compile-time interface check.
var _ domain.RoundCache = (*RoundCache)(nil)
