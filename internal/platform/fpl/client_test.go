package fpl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gwstat/fplboard/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func serveJSON(t *testing.T, path, body string) *Client {
	t.Helper()
	return newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestRoundScores(t *testing.T) {
	c := serveJSON(t, "/event/7/live/", `{
		"elements": [{
			"id": 10,
			"stats": {
				"minutes": 90, "goals_scored": 1, "total_points": 9,
				"expected_goals": "0.45", "in_dreamteam": true
			},
			"explain": [{
				"fixture": 100,
				"stats": [
					{"identifier": "minutes", "points": 2, "value": 90},
					{"identifier": "goals_scored", "points": 4, "value": 1},
					{"identifier": "bonus", "points": 3, "value": 3},
					{"identifier": "some_future_stat", "points": 7, "value": 1}
				]
			}]
		}]
	}`)

	rec, err := c.RoundScores(context.Background(), 7)
	if err != nil {
		t.Fatalf("RoundScores: %v", err)
	}
	if rec.Round != 7 || len(rec.Entities) != 1 {
		t.Fatalf("record = %+v", rec)
	}
	es := rec.Entities[0]
	if es.Entity != 10 || es.Stats.Minutes != 90 || !es.Stats.InDreamteam {
		t.Errorf("stats = %+v", es.Stats)
	}
	if es.Stats.ExpectedGoals != 0.45 {
		t.Errorf("expected goals = %v, want 0.45 decoded from string", es.Stats.ExpectedGoals)
	}
	// The unknown identifier is dropped at decode time.
	if len(es.Explain) != 3 {
		t.Fatalf("explain = %+v, want 3 known lines", es.Explain)
	}
	for _, e := range es.Explain {
		if !domain.KnownCategory(e.Category) {
			t.Errorf("unknown category %q survived decode", e.Category)
		}
	}
}

func TestSelections(t *testing.T) {
	c := serveJSON(t, "/entry/123/event/7/picks/", `{
		"picks": [
			{"element": 10, "position": 1, "multiplier": 1},
			{"element": 20, "position": 11, "multiplier": 2, "is_captain": true},
			{"element": 30, "position": 12, "multiplier": 0}
		]
	}`)

	sel, err := c.Selections(context.Background(), 123, 7)
	if err != nil {
		t.Fatalf("Selections: %v", err)
	}
	if sel.Roster != 123 || sel.Round != 7 {
		t.Errorf("identity = %+v", sel)
	}
	if w, _ := sel.Weight(20); w != domain.WeightCaptain {
		t.Errorf("captain weight = %d, want 2", w)
	}
	if w, ok := sel.Weight(30); !ok || w != domain.WeightBenched {
		t.Errorf("bench weight = %d, %v", w, ok)
	}
}

func TestStandingsAndLeaderTotal(t *testing.T) {
	body := `{
		"league": {"id": 314, "name": "Overall"},
		"standings": {"results": [
			{"entry": 1, "entry_name": "Top", "player_name": "T", "rank": 1, "last_rank": 2, "total": 900},
			{"entry": 2, "entry_name": "Next", "player_name": "N", "rank": 2, "last_rank": 1, "total": 880}
		]}
	}`
	c := serveJSON(t, "/leagues-classic/314/standings/", body)

	entries, err := c.Standings(context.Background(), 314)
	if err != nil {
		t.Fatalf("Standings: %v", err)
	}
	if len(entries) != 2 || entries[0].Roster != 1 || entries[0].TotalPoints != 900 {
		t.Errorf("entries = %+v", entries)
	}

	total, err := c.OverallLeaderTotal(context.Background())
	if err != nil {
		t.Fatalf("OverallLeaderTotal: %v", err)
	}
	if total != 900 {
		t.Errorf("leader total = %d, want 900", total)
	}
}

func TestProfile(t *testing.T) {
	c := serveJSON(t, "/entry/123/", `{
		"id": 123,
		"name": "My Team",
		"player_first_name": "Ada",
		"player_last_name": "Lovelace",
		"player_region_iso_code_short": "EN",
		"summary_overall_points": 777,
		"leagues": {"classic": [
			{"id": 60, "entry_rank": 4, "entry_last_rank": 6}
		]}
	}`)

	p, err := c.Profile(context.Background(), 123)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.PlayerName != "Ada Lovelace" || p.CountryCode != "en" || p.TotalPoints != 777 {
		t.Errorf("profile = %+v", p)
	}
	if lr := p.LeagueRanks[60]; lr.Rank != 4 || lr.LastRank != 6 {
		t.Errorf("league rank = %+v", lr)
	}
}

func TestHistory(t *testing.T) {
	c := serveJSON(t, "/entry/123/history/", `{
		"current": [
			{"event": 1, "points": 60, "points_on_bench": 5, "event_transfers_cost": 0, "overall_rank": 100000},
			{"event": 2, "points": 70, "points_on_bench": 8, "event_transfers_cost": 4, "overall_rank": 60000}
		]
	}`)

	h, err := c.History(context.Background(), 123)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if h.BenchPoints != 13 || h.TransferCost != 4 {
		t.Errorf("aggregates = %+v", h)
	}
	if h.OverallRank != 60000 || h.PreviousOverallRank != 100000 {
		t.Errorf("ranks = %+v", h)
	}
}

func TestEventStatus(t *testing.T) {
	c := serveJSON(t, "/event-status/", `{
		"status": [
			{"event": 7, "date": "2026-01-10", "points": "r", "bonus_added": true},
			{"event": 7, "date": "2026-01-11", "points": "l", "bonus_added": false}
		],
		"leagues": "Updating"
	}`)

	s, err := c.EventStatus(context.Background())
	if err != nil {
		t.Fatalf("EventStatus: %v", err)
	}
	if s.Round() != 7 {
		t.Errorf("Round() = %d, want 7", s.Round())
	}
	if !s.Live() {
		t.Error("Live() = false, want true")
	}
	if !s.Updating() {
		t.Error("Updating() = false, want true")
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"missing entry", http.StatusNotFound, domain.ErrNotFound},
		{"game updating", http.StatusServiceUnavailable, domain.ErrMaintenance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			_, err := c.SeasonSnapshot(context.Background())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	_, err := c.SeasonSnapshot(context.Background())
	if err == nil || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrMaintenance) {
		t.Errorf("unexpected mapping for 502: %v", err)
	}
}
