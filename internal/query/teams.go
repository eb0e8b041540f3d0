package query

import (
	"sort"

	"github.com/gwstat/fplboard/internal/domain"
)

// TeamTotals sums the counting stats of one club's entities in one space.
type TeamTotals struct {
	Starts          int     `json:"starts"`
	Minutes         int     `json:"minutes"`
	Goals           int     `json:"goals_scored"`
	Assists         int     `json:"assists"`
	CleanSheets     int     `json:"clean_sheets"`
	GoalsConceded   int     `json:"goals_conceded"`
	OwnGoals        int     `json:"own_goals"`
	PenaltiesSaved  int     `json:"penalties_saved"`
	PenaltiesMissed int     `json:"penalties_missed"`
	YellowCards     int     `json:"yellow_cards"`
	RedCards        int     `json:"red_cards"`
	Bonus           int     `json:"bonus"`
	BPS             int     `json:"bps"`
	DreamteamCount  int     `json:"dreamteam_count"`
	ExpectedGoals   float64 `json:"expected_goals"`
	ExpectedAssists float64 `json:"expected_assists"`
}

// TeamRosterTotals extends the totals with the counters that only exist in
// the roster-relative space.
type TeamRosterTotals struct {
	TeamTotals
	TimesCaptained int `json:"captained"`
	StartsBenched  int `json:"starts_benched"`
	MinutesBenched int `json:"minutes_benched"`
}

// TeamRow is the per-club rollup of the merged result rows: the same
// baseline and overlay figures the entity tables serve, folded down to one
// row per club.
type TeamRow struct {
	TeamCode  domain.TeamCode  `json:"team_code"`
	TeamName  string           `json:"team_name"`
	TeamShort string           `json:"team_short"`
	Global    TeamTotals       `json:"global"`
	Roster    TeamRosterTotals `json:"roster"`
}

// BuildTeams folds entity rows into one row per club. overlays may be nil;
// the roster totals then stay zero. Rows come back ordered by club code.
// Pure, like Run; all data access happens before the call.
func BuildTeams(baselines map[domain.EntityID]*domain.EntityBaseline, overlays map[domain.EntityID]*domain.RosterOverlay) []TeamRow {
	byCode := make(map[domain.TeamCode]*TeamRow)
	for id, base := range baselines {
		row := byCode[base.TeamCode]
		if row == nil {
			row = &TeamRow{
				TeamCode:  base.TeamCode,
				TeamName:  base.TeamName,
				TeamShort: base.TeamShort,
			}
			byCode[base.TeamCode] = row
		}
		addBaseline(&row.Global, base)
		if overlays != nil {
			if o, ok := overlays[id]; ok {
				addOverlay(&row.Roster, o)
			}
		}
	}

	rows := make([]TeamRow, 0, len(byCode))
	for _, row := range byCode {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamCode < rows[j].TeamCode })
	return rows
}

func addBaseline(t *TeamTotals, b *domain.EntityBaseline) {
	t.Starts += b.Starts
	t.Minutes += b.Minutes
	t.Goals += b.Goals
	t.Assists += b.Assists
	t.CleanSheets += b.CleanSheets
	t.GoalsConceded += b.GoalsConceded
	t.OwnGoals += b.OwnGoals
	t.PenaltiesSaved += b.PenaltiesSaved
	t.PenaltiesMissed += b.PenaltiesMissed
	t.YellowCards += b.YellowCards
	t.RedCards += b.RedCards
	t.Bonus += b.Bonus
	t.BPS += b.BPS
	t.DreamteamCount += b.DreamteamCount
	t.ExpectedGoals += b.ExpectedGoals
	t.ExpectedAssists += b.ExpectedAssists
}

func addOverlay(t *TeamRosterTotals, o *domain.RosterOverlay) {
	t.Starts += o.Starts
	t.Minutes += o.Minutes
	t.Goals += o.Goals
	t.Assists += o.Assists
	t.CleanSheets += o.CleanSheets
	t.GoalsConceded += o.GoalsConceded
	t.OwnGoals += o.OwnGoals
	t.PenaltiesSaved += o.PenaltiesSaved
	t.PenaltiesMissed += o.PenaltiesMissed
	t.YellowCards += o.YellowCards
	t.RedCards += o.RedCards
	t.Bonus += o.Bonus
	t.BPS += o.BPS
	t.DreamteamCount += o.DreamteamCount
	t.ExpectedGoals += o.ExpectedGoals
	t.ExpectedAssists += o.ExpectedAssists
	t.TimesCaptained += o.TimesCaptained
	t.StartsBenched += o.StartsBenched
	t.MinutesBenched += o.MinutesBenched
}
