package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gwstat/fplboard/internal/domain"
)

// leaderTTL bounds how long the global leader's total is reused. The scalar
// moves slowly, so it is cached independently of the oracle.
const leaderTTL = 5 * time.Minute

// LeaderCache implements domain.LeaderCache as a single string key.
type LeaderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLeaderCache creates a LeaderCache backed by the given Client. ttl <= 0
// selects the default.
func NewLeaderCache(c *Client, ttl time.Duration) *LeaderCache {
	if ttl <= 0 {
		ttl = leaderTTL
	}
	return &LeaderCache{rdb: c.Underlying(), ttl: ttl}
}

const leaderKey = "leader:total"

// SetLeaderTotal stores the leader's season total.
func (lc *LeaderCache) SetLeaderTotal(ctx context.Context, total int) error {
	if err := lc.rdb.Set(ctx, leaderKey, strconv.Itoa(total), lc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set leader total: %w", err)
	}
	return nil
}

// GetLeaderTotal retrieves the leader's season total. It returns
// domain.ErrNotFound when the key does not exist.
func (lc *LeaderCache) GetLeaderTotal(ctx context.Context) (int, error) {
	val, err := lc.rdb.Get(ctx, leaderKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("redis: get leader total: %w", err)
	}

	total, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("redis: parse leader total: %w", err)
	}
	return total, nil
}

// Compile-time interface check.
var _ domain.LeaderCache = (*LeaderCache)(nil)
