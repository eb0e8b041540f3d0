package domain

import "math"

// RosterOverlay is the roster-relative view of one entity: everything it
// contributed to a specific roster across the season. An overlay exists only
// for entities the roster selected at least once; points here are bounded by
// the entity's global points over the rounds it was selected.
type RosterOverlay struct {
	Entity EntityID `json:"entity"`

	// Appearances counts rounds fielded with nonzero minutes.
	Appearances int `json:"appearances"`

	Minutes        int `json:"minutes"`
	MinutesBenched int `json:"minutes_benched"`

	Goals          int `json:"goals"`
	GoalsBenched   int `json:"goals_benched"`
	GoalsCaptained int `json:"goals_captained"`

	Assists          int `json:"assists"`
	AssistsBenched   int `json:"assists_benched"`
	AssistsCaptained int `json:"assists_captained"`

	Starts        int `json:"starts"`
	StartsBenched int `json:"starts_benched"`

	CleanSheets           int `json:"clean_sheets"`
	GoalsConceded         int `json:"goals_conceded"`
	OwnGoals              int `json:"own_goals"`
	PenaltiesSaved        int `json:"penalties_saved"`
	PenaltiesMissed       int `json:"penalties_missed"`
	YellowCards           int `json:"yellow_cards"`
	RedCards              int `json:"red_cards"`
	Saves                 int `json:"saves"`
	Bonus                 int `json:"bonus"`
	BPS                   int `json:"bps"`
	CBI                   int `json:"cbi"`
	Tackles               int `json:"tackles"`
	Recoveries            int `json:"recoveries"`
	DreamteamCount        int `json:"dreamteam_count"`
	DefensiveContribution int `json:"defensive_contribution"`

	DefensiveContributionCount int `json:"defensive_contribution_count"`

	ExpectedGoals         float64 `json:"expected_goals"`
	ExpectedAssists       float64 `json:"expected_assists"`
	ExpectedInvolvements  float64 `json:"expected_involvements"`
	ExpectedGoalsConceded float64 `json:"expected_goals_conceded"`

	GoalsDelta        float64 `json:"goals_delta"`
	AssistsDelta      float64 `json:"assists_delta"`
	InvolvementsDelta float64 `json:"involvements_delta"`

	// TotalPoints is the base (weight-1) points earned while fielded.
	// CaptainBonus is the extra credited on top for weight 2 and 3 rounds.
	// BenchPoints is what the entity scored while benched; it never counts
	// toward TotalPoints.
	TotalPoints    int `json:"total_points"`
	CaptainBonus   int `json:"captain_bonus"`
	BenchPoints    int `json:"bench_points"`
	TimesCaptained int `json:"times_captained"`

	// Points is the roster-relative category breakdown, accumulated with the
	// same deduplicated explanation walk as the global aggregation.
	Points PointsBreakdown `json:"points"`

	// Derived rates, computed once after all rounds are folded.
	PointsPerRound             float64 `json:"points_per_round"`
	PointsPerMillion           float64 `json:"points_per_million"`
	CleanSheetRate             float64 `json:"clean_sheet_rate"`
	CleanSheetsPer90           float64 `json:"clean_sheets_per_90"`
	ExpectedGoalsPer90         float64 `json:"expected_goals_per_90"`
	DefensiveContributionPer90 float64 `json:"defensive_contribution_per_90"`
}

// NewRosterOverlay returns a zeroed overlay with an allocated breakdown.
func NewRosterOverlay(id EntityID) *RosterOverlay {
	return &RosterOverlay{Entity: id, Points: make(PointsBreakdown)}
}

// DeriveRates fills in the per-90 and per-round figures. cost is the
// entity's baseline cost. Every division is zero-guarded.
func (o *RosterOverlay) DeriveRates(cost int) {
	if o.Appearances > 0 {
		o.PointsPerRound = round2(float64(o.TotalPoints) / float64(o.Appearances))
	}
	if cost > 0 {
		o.PointsPerMillion = round1(float64(o.TotalPoints) / (float64(cost) / 10))
	}
	if o.Minutes > 0 {
		per90 := 90 / float64(o.Minutes)
		o.CleanSheetsPer90 = float64(o.CleanSheets) * per90
		o.CleanSheetRate = math.Min(o.CleanSheetsPer90, 1.0)
		o.ExpectedGoalsPer90 = o.ExpectedGoals * per90
		o.DefensiveContributionPer90 = float64(o.DefensiveContribution) * per90
	}
	o.GoalsDelta = round2(float64(o.Goals) - o.ExpectedGoals)
	o.AssistsDelta = round2(float64(o.Assists) - o.ExpectedAssists)
	o.InvolvementsDelta = round2(float64(o.Goals+o.Assists) - o.ExpectedInvolvements)
	o.DefensiveContributionCount = o.Points[CategoryDefensiveContribution] / 2
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
