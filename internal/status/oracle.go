// Package status tracks upstream scoring freshness. A single oracle polls
// the event-status feed on a short interval and hands out a monotonic
// last-update version that every cache key downstream is derived from.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/platform/fpl"
)

// liveBucket is the granularity at which the version advances while a round
// is scoring. Coarser than the poll interval so two pollers agree on the
// version they derive.
const liveBucket = 30 * time.Second

// Feed is the slice of the upstream client the oracle needs.
type Feed interface {
	EventStatus(ctx context.Context) (*fpl.APIEventStatus, error)
}

// Oracle polls the status feed and derives the freshness state all caches
// key on. Safe for concurrent use.
type Oracle struct {
	feed         Feed
	logger       *slog.Logger
	pollInterval time.Duration
	maintenance  bool
	now          func() time.Time

	mu       sync.Mutex
	primed   bool
	lastPoll time.Time
	lastSig  string
	state    domain.FreshnessState
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithClock overrides the oracle's time source.
func WithClock(now func() time.Time) Option {
	return func(o *Oracle) { o.now = now }
}

// WithMaintenance forces every state the oracle derives into maintenance.
// Used as an operator override while the upstream misbehaves.
func WithMaintenance(on bool) Option {
	return func(o *Oracle) { o.maintenance = on }
}

// NewOracle creates an oracle polling at most once per pollInterval.
func NewOracle(feed Feed, pollInterval time.Duration, logger *slog.Logger, opts ...Option) *Oracle {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	o := &Oracle{
		feed:         feed,
		logger:       logger,
		pollInterval: pollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current freshness state, polling the upstream only if
// the cached poll has aged past the poll interval. When a poll fails after
// the oracle has been primed once, the last known state is returned instead
// of an error.
func (o *Oracle) State(ctx context.Context) (domain.FreshnessState, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	if o.primed && now.Sub(o.lastPoll) < o.pollInterval {
		return o.state, nil
	}

	feed, err := o.feed.EventStatus(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMaintenance) {
			o.lastPoll = now
			o.state = o.maintenanceState(o.state.Round, now)
			o.primed = true
			return o.state, nil
		}
		if o.primed {
			o.logger.Warn("status poll failed, serving last known state",
				slog.String("error", err.Error()))
			o.lastPoll = now
			return o.state, nil
		}
		// Nothing known yet; answer conservatively and retry on the next
		// call rather than failing the caller.
		o.logger.Warn("status poll failed before first state",
			slog.String("error", err.Error()))
		return o.maintenanceState(0, now), nil
	}

	o.lastPoll = now
	o.state = o.derive(feed, now)
	o.primed = true
	return o.state, nil
}

// derive folds a feed body into the next state. Must be called with the
// mutex held.
func (o *Oracle) derive(feed *fpl.APIEventStatus, now time.Time) domain.FreshnessState {
	if o.maintenance || feed.Updating() {
		return o.maintenanceState(feed.Round(), now)
	}

	sig := signature(feed)
	lastUpdate := o.state.LastUpdate
	if !o.primed || sig != o.lastSig {
		if now.After(lastUpdate) {
			lastUpdate = now
		}
	}
	o.lastSig = sig

	live := feed.Live()
	if live {
		// While scoring is mid-flight the feed body stays constant between
		// point drops, so advance the version on a fixed bucket instead.
		if bucket := now.Truncate(liveBucket); bucket.After(lastUpdate) {
			lastUpdate = bucket
		}
	}

	return domain.FreshnessState{
		Round:      feed.Round(),
		LastUpdate: lastUpdate,
		IsLive:     live,
	}
}

func (o *Oracle) maintenanceState(round int, now time.Time) domain.FreshnessState {
	lastUpdate := o.state.LastUpdate
	if lastUpdate.IsZero() {
		lastUpdate = now
	}
	return domain.FreshnessState{
		Round:         round,
		LastUpdate:    lastUpdate,
		IsMaintenance: true,
		Message:       domain.ErrMaintenance.Error(),
	}
}

// signature serializes the fields that change when new points land. The
// version only advances when this string does, so transient field ordering
// must be stable; the struct layout guarantees that.
func signature(feed *fpl.APIEventStatus) string {
	b, err := json.Marshal(feed)
	if err != nil {
		return ""
	}
	return string(b)
}
