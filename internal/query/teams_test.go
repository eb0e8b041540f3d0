package query

import (
	"testing"

	"github.com/gwstat/fplboard/internal/domain"
)

func clubBaseline(id int, code domain.TeamCode, name, short string) *domain.EntityBaseline {
	b := baseline(id)
	b.TeamCode = code
	b.TeamName = name
	b.TeamShort = short
	return b
}

func TestBuildTeamsFoldsByClub(t *testing.T) {
	a1 := clubBaseline(1, 3, "Arsenal", "ARS")
	a1.Goals, a1.Assists, a1.Starts = 4, 2, 10
	a1.ExpectedGoals = 3.1
	a2 := clubBaseline(2, 3, "Arsenal", "ARS")
	a2.Goals, a2.YellowCards, a2.Starts = 1, 3, 8
	a2.ExpectedGoals = 0.9
	lv := clubBaseline(3, 14, "Liverpool", "LIV")
	lv.Goals, lv.CleanSheets = 7, 5

	baselines := map[domain.EntityID]*domain.EntityBaseline{
		a1.ID: a1, a2.ID: a2, lv.ID: lv,
	}

	rows := BuildTeams(baselines, nil)
	if len(rows) != 2 {
		t.Fatalf("got %d team rows, want 2", len(rows))
	}
	if rows[0].TeamCode != 3 || rows[1].TeamCode != 14 {
		t.Fatalf("rows not ordered by club code: %d, %d", rows[0].TeamCode, rows[1].TeamCode)
	}

	ars := rows[0]
	if ars.TeamName != "Arsenal" || ars.TeamShort != "ARS" {
		t.Errorf("club identity = %s/%s, want Arsenal/ARS", ars.TeamName, ars.TeamShort)
	}
	if ars.Global.Goals != 5 || ars.Global.Assists != 2 || ars.Global.Starts != 18 {
		t.Errorf("club totals = %+v, want goals 5 assists 2 starts 18", ars.Global)
	}
	if ars.Global.YellowCards != 3 {
		t.Errorf("yellow cards = %d, want 3", ars.Global.YellowCards)
	}
	if ars.Global.ExpectedGoals != 4.0 {
		t.Errorf("expected goals = %v, want 4.0", ars.Global.ExpectedGoals)
	}
	if ars.Roster.Goals != 0 || ars.Roster.TimesCaptained != 0 {
		t.Errorf("roster totals without overlays = %+v, want zero", ars.Roster)
	}

	liv := rows[1]
	if liv.Global.Goals != 7 || liv.Global.CleanSheets != 5 {
		t.Errorf("club totals = %+v, want goals 7 clean sheets 5", liv.Global)
	}
}

func TestBuildTeamsMergesOverlay(t *testing.T) {
	a1 := clubBaseline(1, 3, "Arsenal", "ARS")
	a2 := clubBaseline(2, 3, "Arsenal", "ARS")
	lv := clubBaseline(3, 14, "Liverpool", "LIV")
	baselines := map[domain.EntityID]*domain.EntityBaseline{
		a1.ID: a1, a2.ID: a2, lv.ID: lv,
	}

	o1 := domain.NewRosterOverlay(1)
	o1.Goals, o1.Starts, o1.TimesCaptained = 3, 6, 2
	o1.StartsBenched, o1.MinutesBenched = 1, 45
	o2 := domain.NewRosterOverlay(2)
	o2.Goals, o2.Starts = 1, 4
	overlays := map[domain.EntityID]*domain.RosterOverlay{1: o1, 2: o2}

	rows := BuildTeams(baselines, overlays)
	if len(rows) != 2 {
		t.Fatalf("got %d team rows, want 2", len(rows))
	}

	ars := rows[0]
	if ars.Roster.Goals != 4 || ars.Roster.Starts != 10 {
		t.Errorf("roster totals = %+v, want goals 4 starts 10", ars.Roster)
	}
	if ars.Roster.TimesCaptained != 2 || ars.Roster.StartsBenched != 1 || ars.Roster.MinutesBenched != 45 {
		t.Errorf("roster counters = %+v, want captained 2 benched 1/45", ars.Roster)
	}

	// The unselected club keeps a zero roster column set.
	liv := rows[1]
	if liv.Roster != (TeamRosterTotals{}) {
		t.Errorf("unselected club roster totals = %+v, want zero", liv.Roster)
	}
}
