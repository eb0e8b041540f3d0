package domain

import (
	"errors"
	"testing"
	"time"
)

func TestFresh(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		lastFetched time.Time
		lastUpdate  time.Time
		want        bool
	}{
		{"fetched after update", base.Add(time.Minute), base, true},
		{"fetched exactly at update", base, base, true},
		{"fetched before update", base.Add(-time.Second), base, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fresh(tt.lastFetched, tt.lastUpdate); got != tt.want {
				t.Errorf("Fresh(%v, %v) = %v, want %v", tt.lastFetched, tt.lastUpdate, got, tt.want)
			}
		})
	}
}

func TestCacheEntryValidate(t *testing.T) {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	entry := CacheEntry{LastFetched: base}
	if err := entry.Validate(base); err != nil {
		t.Errorf("Validate at the fetch instant = %v, want nil", err)
	}
	if err := entry.Validate(base.Add(time.Second)); !errors.Is(err, ErrStale) {
		t.Errorf("Validate against a later version = %v, want ErrStale", err)
	}
}

func TestCacheKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			"global points",
			CacheKey{Kind: CacheKindGlobalPoints, Round: 7},
			"global_points:gw7",
		},
		{
			"overlay",
			CacheKey{Kind: CacheKindOverlay, Roster: 123, Round: 7},
			"overlay:roster123:gw7",
		},
		{
			"cohort",
			CacheKey{Kind: CacheKindCohortSummary, League: 60, Roster: 123, Round: 7, CohortSize: 50},
			"cohort_summary:league60:roster123:gw7:top50",
		},
		{
			"kind only",
			CacheKey{Kind: CacheKindGlobalPoints},
			"global_points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPointsBreakdownTotal(t *testing.T) {
	b := PointsBreakdown{
		CategoryMinutes:     2,
		CategoryGoalsScored: 8,
		CategoryYellowCards: -1,
	}
	if got := b.Total(); got != 9 {
		t.Errorf("Total() = %d, want 9", got)
	}

	clone := b.Clone()
	clone.Add(CategoryBonus, 3)
	if b[CategoryBonus] != 0 {
		t.Error("Clone() shares storage with the original")
	}
}

func TestSelectionRecordWeight(t *testing.T) {
	sel := SelectionRecord{
		Roster: 1,
		Round:  3,
		Weights: map[EntityID]int{
			10: WeightBenched,
			11: WeightFielded,
			12: WeightCaptain,
		},
	}

	if w, ok := sel.Weight(10); !ok || w != WeightBenched {
		t.Errorf("Weight(10) = %d, %v; want 0, true", w, ok)
	}
	if w, ok := sel.Weight(12); !ok || w != WeightCaptain {
		t.Errorf("Weight(12) = %d, %v; want 2, true", w, ok)
	}
	if _, ok := sel.Weight(99); ok {
		t.Error("Weight(99) reported an entity that was never in the squad")
	}
}
