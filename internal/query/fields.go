package query

import "github.com/gwstat/fplboard/internal/domain"

// accessor reads one sortable value off a merged row.
type accessor func(*Row) float64

// column pairs an accessor with whether it reads the roster overlay. The
// overlay flag drives admission for the global variant; a suffix convention
// would miss columns like the vs_total delta that mix both spaces.
type column struct {
	value   accessor
	overlay bool
}

func global(fn accessor) column { return column{value: fn} }
func team(fn accessor) column   { return column{value: fn, overlay: true} }

// fields is the closed column registry. Global columns read the baseline;
// team columns read the roster overlay. Per-category points columns are
// generated for both spaces from the category set.
var fields = map[string]column{
	// Global counting stats.
	"goals_scored":           global(func(r *Row) float64 { return float64(r.Base.Goals) }),
	"assists":                global(func(r *Row) float64 { return float64(r.Base.Assists) }),
	"goals_assists":          global(func(r *Row) float64 { return float64(r.Base.Goals + r.Base.Assists) }),
	"minutes":                global(func(r *Row) float64 { return float64(r.Base.Minutes) }),
	"starts":                 global(func(r *Row) float64 { return float64(r.Base.Starts) }),
	"clean_sheets":           global(func(r *Row) float64 { return float64(r.Base.CleanSheets) }),
	"goals_conceded":         global(func(r *Row) float64 { return float64(r.Base.GoalsConceded) }),
	"own_goals":              global(func(r *Row) float64 { return float64(r.Base.OwnGoals) }),
	"penalties_saved":        global(func(r *Row) float64 { return float64(r.Base.PenaltiesSaved) }),
	"penalties_missed":       global(func(r *Row) float64 { return float64(r.Base.PenaltiesMissed) }),
	"yellow_cards":           global(func(r *Row) float64 { return float64(r.Base.YellowCards) }),
	"red_cards":              global(func(r *Row) float64 { return float64(r.Base.RedCards) }),
	"saves":                  global(func(r *Row) float64 { return float64(r.Base.Saves) }),
	"bonus":                  global(func(r *Row) float64 { return float64(r.Base.Bonus) }),
	"bps":                    global(func(r *Row) float64 { return float64(r.Base.BPS) }),
	"tackles":                global(func(r *Row) float64 { return float64(r.Base.Tackles) }),
	"recoveries":             global(func(r *Row) float64 { return float64(r.Base.Recoveries) }),
	"cbi":                    global(func(r *Row) float64 { return float64(r.Base.CBI) }),
	"dreamteam_count":        global(func(r *Row) float64 { return float64(r.Base.DreamteamCount) }),
	"defensive_contribution": global(func(r *Row) float64 { return float64(r.Base.DefensiveContribution) }),

	// Global pricing, selection, and rate figures.
	"cost":            global(func(r *Row) float64 { return float64(r.Base.Cost) }),
	"selected_by":     global(func(r *Row) float64 { return r.Base.SelectedBy }),
	"total_points":    global(func(r *Row) float64 { return float64(r.Base.TotalPoints) }),
	"points_per_game": global(func(r *Row) float64 { return r.Base.PointsPerGame }),
	"points_pm":       global(func(r *Row) float64 { return r.Base.PointsPerMillion }),

	// Global expected stats and performance deltas.
	"expected_goals":             global(func(r *Row) float64 { return r.Base.ExpectedGoals }),
	"expected_assists":           global(func(r *Row) float64 { return r.Base.ExpectedAssists }),
	"expected_goal_involvements": global(func(r *Row) float64 { return r.Base.ExpectedInvolvements }),
	"expected_goals_conceded":    global(func(r *Row) float64 { return r.Base.ExpectedGoalsConceded }),
	"goals_performance":          global(func(r *Row) float64 { return r.Base.GoalsDelta }),
	"assists_performance":        global(func(r *Row) float64 { return r.Base.AssistsDelta }),
	"goals_assists_performance":  global(func(r *Row) float64 { return r.Base.InvolvementsDelta }),

	// Roster-relative counting stats.
	"goals_scored_team":           team(func(r *Row) float64 { return float64(r.Overlay.Goals) }),
	"goals_benched_team":          team(func(r *Row) float64 { return float64(r.Overlay.GoalsBenched) }),
	"goals_captained_team":        team(func(r *Row) float64 { return float64(r.Overlay.GoalsCaptained) }),
	"assists_team":                team(func(r *Row) float64 { return float64(r.Overlay.Assists) }),
	"assists_benched_team":        team(func(r *Row) float64 { return float64(r.Overlay.AssistsBenched) }),
	"assists_captained_team":      team(func(r *Row) float64 { return float64(r.Overlay.AssistsCaptained) }),
	"goals_assists_team":          team(func(r *Row) float64 { return float64(r.Overlay.Goals + r.Overlay.Assists) }),
	"minutes_team":                team(func(r *Row) float64 { return float64(r.Overlay.Minutes) }),
	"minutes_benched_team":        team(func(r *Row) float64 { return float64(r.Overlay.MinutesBenched) }),
	"starts_team":                 team(func(r *Row) float64 { return float64(r.Overlay.Starts) }),
	"starts_benched_team":         team(func(r *Row) float64 { return float64(r.Overlay.StartsBenched) }),
	"appearances_team":            team(func(r *Row) float64 { return float64(r.Overlay.Appearances) }),
	"clean_sheets_team":           team(func(r *Row) float64 { return float64(r.Overlay.CleanSheets) }),
	"goals_conceded_team":         team(func(r *Row) float64 { return float64(r.Overlay.GoalsConceded) }),
	"own_goals_team":              team(func(r *Row) float64 { return float64(r.Overlay.OwnGoals) }),
	"penalties_saved_team":        team(func(r *Row) float64 { return float64(r.Overlay.PenaltiesSaved) }),
	"penalties_missed_team":       team(func(r *Row) float64 { return float64(r.Overlay.PenaltiesMissed) }),
	"yellow_cards_team":           team(func(r *Row) float64 { return float64(r.Overlay.YellowCards) }),
	"red_cards_team":              team(func(r *Row) float64 { return float64(r.Overlay.RedCards) }),
	"saves_team":                  team(func(r *Row) float64 { return float64(r.Overlay.Saves) }),
	"bonus_team":                  team(func(r *Row) float64 { return float64(r.Overlay.Bonus) }),
	"bps_team":                    team(func(r *Row) float64 { return float64(r.Overlay.BPS) }),
	"tackles_team":                team(func(r *Row) float64 { return float64(r.Overlay.Tackles) }),
	"recoveries_team":             team(func(r *Row) float64 { return float64(r.Overlay.Recoveries) }),
	"cbi_team":                    team(func(r *Row) float64 { return float64(r.Overlay.CBI) }),
	"dreamteam_count_team":        team(func(r *Row) float64 { return float64(r.Overlay.DreamteamCount) }),
	"defensive_contribution_team": team(func(r *Row) float64 { return float64(r.Overlay.DefensiveContribution) }),
	"times_captained_team":        team(func(r *Row) float64 { return float64(r.Overlay.TimesCaptained) }),

	// Roster-relative points and rates.
	"total_points_team":  team(func(r *Row) float64 { return float64(r.Overlay.TotalPoints) }),
	"captain_bonus_team": team(func(r *Row) float64 { return float64(r.Overlay.CaptainBonus) }),
	"bench_points_team":  team(func(r *Row) float64 { return float64(r.Overlay.BenchPoints) }),
	"points_pm_team":     team(func(r *Row) float64 { return r.Overlay.PointsPerMillion }),
	"points_per_round_team": team(func(r *Row) float64 {
		return r.Overlay.PointsPerRound
	}),
	"clean_sheet_rate_team": team(func(r *Row) float64 { return r.Overlay.CleanSheetRate }),
	"clean_sheets_per_90_team": team(func(r *Row) float64 {
		return r.Overlay.CleanSheetsPer90
	}),
	"expected_goals_per_90_team": team(func(r *Row) float64 {
		return r.Overlay.ExpectedGoalsPer90
	}),
	"defensive_contribution_per_90_team": team(func(r *Row) float64 {
		return r.Overlay.DefensiveContributionPer90
	}),

	// Roster-relative expected stats and performance deltas.
	"expected_goals_team":             team(func(r *Row) float64 { return r.Overlay.ExpectedGoals }),
	"expected_assists_team":           team(func(r *Row) float64 { return r.Overlay.ExpectedAssists }),
	"expected_goal_involvements_team": team(func(r *Row) float64 { return r.Overlay.ExpectedInvolvements }),
	"goals_performance_team":          team(func(r *Row) float64 { return r.Overlay.GoalsDelta }),
	"assists_performance_team":        team(func(r *Row) float64 { return r.Overlay.AssistsDelta }),
	"goals_assists_performance_team":  team(func(r *Row) float64 { return r.Overlay.InvolvementsDelta }),
	"goals_assists_performance_team_vs_total": team(func(r *Row) float64 {
		return r.Overlay.InvolvementsDelta - r.Base.InvolvementsDelta
	}),
}

// negativeFields are columns whose values are at most zero; filtering keeps
// only strictly negative rows.
var negativeFields = map[string]bool{
	"points_pm_team": true,
}

// eitherSignFields are columns that legitimately carry either sign;
// filtering keeps any nonzero row.
var eitherSignFields = map[string]bool{
	"goals_performance":                       true,
	"assists_performance":                     true,
	"goals_assists_performance":               true,
	"goals_performance_team":                  true,
	"assists_performance_team":                true,
	"goals_assists_performance_team":          true,
	"goals_assists_performance_team_vs_total": true,
	"total_points":                            true,
	"total_points_team":                       true,
	"starts_team":                             true,
}

func init() {
	// Per-category points columns for both the global and roster spaces.
	for _, c := range domain.Categories {
		c := c
		globalName := string(c) + "_points"
		teamName := string(c) + "_points_team"
		fields[globalName] = global(func(r *Row) float64 { return float64(r.Base.Points[c]) })
		fields[teamName] = team(func(r *Row) float64 { return float64(r.Overlay.Points[c]) })
	}
	// Categories that only ever deduct points.
	for _, c := range []domain.Category{
		domain.CategoryGoalsConceded,
		domain.CategoryOwnGoals,
		domain.CategoryPenaltiesMissed,
		domain.CategoryYellowCards,
		domain.CategoryRedCards,
	} {
		negativeFields[string(c)+"_points"] = true
		negativeFields[string(c)+"_points_team"] = true
	}
}
