package status

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/platform/fpl"
)

type fakeFeed struct {
	status *fpl.APIEventStatus
	err    error
	calls  int
}

func (f *fakeFeed) EventStatus(ctx context.Context) (*fpl.APIEventStatus, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func finishedStatus(round int) *fpl.APIEventStatus {
	return &fpl.APIEventStatus{
		Status:  []fpl.APIDayStatus{{Event: round, Points: "r", BonusAdded: true}},
		Leagues: "Checked",
	}
}

func liveStatus(round int) *fpl.APIEventStatus {
	return &fpl.APIEventStatus{
		Status:  []fpl.APIDayStatus{{Event: round, Points: "l"}},
		Leagues: "Checked",
	}
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestOraclePollGating(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	feed := &fakeFeed{status: finishedStatus(7)}
	o := NewOracle(feed, 30*time.Second, quietLogger(), WithClock(clk.now))

	first, err := o.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if first.Round != 7 || first.IsLive || first.IsMaintenance {
		t.Errorf("state = %+v, want round 7 finished", first)
	}

	// Within the poll interval the feed must not be hit again.
	clk.advance(10 * time.Second)
	second, err := o.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if feed.calls != 1 {
		t.Errorf("feed polled %d times inside the interval, want 1", feed.calls)
	}
	if !second.LastUpdate.Equal(first.LastUpdate) {
		t.Errorf("LastUpdate moved without a poll: %v -> %v", first.LastUpdate, second.LastUpdate)
	}

	clk.advance(25 * time.Second)
	if _, err := o.State(ctx); err != nil {
		t.Fatalf("State: %v", err)
	}
	if feed.calls != 2 {
		t.Errorf("feed polled %d times after the interval elapsed, want 2", feed.calls)
	}
}

func TestOracleVersionAdvancesOnSignatureChange(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	feed := &fakeFeed{status: finishedStatus(7)}
	o := NewOracle(feed, time.Second, quietLogger(), WithClock(clk.now))

	first, _ := o.State(ctx)

	// Same body after the interval: the version must hold still.
	clk.advance(5 * time.Second)
	second, _ := o.State(ctx)
	if !second.LastUpdate.Equal(first.LastUpdate) {
		t.Errorf("LastUpdate advanced on an unchanged body: %v -> %v", first.LastUpdate, second.LastUpdate)
	}

	// Changed body: the version advances to the poll time.
	clk.advance(5 * time.Second)
	feed.status = finishedStatus(8)
	third, _ := o.State(ctx)
	if !third.LastUpdate.After(second.LastUpdate) {
		t.Errorf("LastUpdate did not advance on a changed body: %v", third.LastUpdate)
	}
	if !third.LastUpdate.Equal(clk.t) {
		t.Errorf("LastUpdate = %v, want poll time %v", third.LastUpdate, clk.t)
	}
}

func TestOracleLiveBuckets(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 10, 12, 0, 5, 0, time.UTC)
	clk := &clock{t: start}
	feed := &fakeFeed{status: liveStatus(7)}
	o := NewOracle(feed, time.Second, quietLogger(), WithClock(clk.now))

	first, _ := o.State(ctx)
	if !first.IsLive {
		t.Fatal("IsLive = false, want true")
	}

	// 12:00:12 truncates to the same 30s bucket; the version holds.
	clk.advance(7 * time.Second)
	second, _ := o.State(ctx)
	if !second.LastUpdate.Equal(first.LastUpdate) {
		t.Errorf("LastUpdate moved within a live bucket: %v -> %v", first.LastUpdate, second.LastUpdate)
	}

	// 12:00:31 crosses into the next bucket.
	clk.advance(19 * time.Second)
	third, _ := o.State(ctx)
	want := time.Date(2026, 1, 10, 12, 0, 30, 0, time.UTC)
	if !third.LastUpdate.Equal(want) {
		t.Errorf("LastUpdate = %v, want bucket edge %v", third.LastUpdate, want)
	}
}

func TestOracleFailureFallbacks(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	feed := &fakeFeed{err: errors.New("connection refused")}
	o := NewOracle(feed, time.Second, quietLogger(), WithClock(clk.now))

	// Before any successful poll a failure yields a conservative
	// maintenance state, not an error.
	state, err := o.State(ctx)
	if err != nil {
		t.Fatalf("State before priming: %v", err)
	}
	if !state.IsMaintenance {
		t.Errorf("unprimed failure state = %+v, want maintenance", state)
	}

	// The failed attempt must not count as a poll; the next call retries.
	feed.err = nil
	feed.status = finishedStatus(7)
	state, err = o.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.IsMaintenance || state.Round != 7 {
		t.Errorf("state after recovery = %+v, want round 7", state)
	}

	// Once primed, a failure serves the last known state.
	primed := state
	clk.advance(5 * time.Second)
	feed.err = errors.New("connection refused")
	state, err = o.State(ctx)
	if err != nil {
		t.Fatalf("State after priming: %v", err)
	}
	if state.IsMaintenance || state.Round != primed.Round || !state.LastUpdate.Equal(primed.LastUpdate) {
		t.Errorf("primed failure state = %+v, want last known %+v", state, primed)
	}
}

func TestOracleMaintenance(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}

	// Upstream 503 becomes a maintenance state carrying the message.
	feed := &fakeFeed{err: domain.ErrMaintenance}
	o := NewOracle(feed, time.Second, quietLogger(), WithClock(clk.now))
	state, err := o.State(ctx)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if !state.IsMaintenance || state.Message == "" {
		t.Errorf("state = %+v, want maintenance with message", state)
	}

	// Leagues "Updating" is maintenance too.
	feed2 := &fakeFeed{status: &fpl.APIEventStatus{
		Status:  []fpl.APIDayStatus{{Event: 7, Points: "r"}},
		Leagues: "Updating",
	}}
	o2 := NewOracle(feed2, time.Second, quietLogger(), WithClock(clk.now))
	state, _ = o2.State(ctx)
	if !state.IsMaintenance || state.Round != 7 {
		t.Errorf("updating state = %+v, want maintenance round 7", state)
	}

	// Operator override forces maintenance regardless of the feed.
	feed3 := &fakeFeed{status: finishedStatus(7)}
	o3 := NewOracle(feed3, time.Second, quietLogger(), WithClock(clk.now), WithMaintenance(true))
	state, _ = o3.State(ctx)
	if !state.IsMaintenance {
		t.Errorf("override state = %+v, want maintenance", state)
	}
}
