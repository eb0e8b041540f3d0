// Package domain defines the core records of the gameweek aggregation engine:
// entity baselines, per-round score records, roster selections and overlays,
// cohort summaries, and the cache/freshness contracts that tie them together.
package domain

// EntityID identifies a scoreable entity (an athlete) for a whole season.
type EntityID int

// TeamCode is the upstream's stable club identifier.
type TeamCode int

// Position classifies an entity by its on-pitch role. Values match the
// upstream's element_type field.
type Position int

const (
	PositionGoalkeeper Position = iota + 1
	PositionDefender
	PositionMidfielder
	PositionForward
)

// String returns the short label used in logs and filters.
func (p Position) String() string {
	switch p {
	case PositionGoalkeeper:
		return "GKP"
	case PositionDefender:
		return "DEF"
	case PositionMidfielder:
		return "MID"
	case PositionForward:
		return "FWD"
	default:
		return "UNK"
	}
}

// Category is a scoring category from the upstream's explanation blocks.
// The set is closed: unknown identifiers are dropped at decode time.
type Category string

const (
	CategoryMinutes               Category = "minutes"
	CategoryGoalsScored           Category = "goals_scored"
	CategoryAssists               Category = "assists"
	CategoryCleanSheets           Category = "clean_sheets"
	CategoryGoalsConceded         Category = "goals_conceded"
	CategoryOwnGoals              Category = "own_goals"
	CategoryPenaltiesSaved        Category = "penalties_saved"
	CategoryPenaltiesMissed       Category = "penalties_missed"
	CategoryYellowCards           Category = "yellow_cards"
	CategoryRedCards              Category = "red_cards"
	CategorySaves                 Category = "saves"
	CategoryBonus                 Category = "bonus"
	CategoryDefensiveContribution Category = "defensive_contribution"
)

// Categories lists every known scoring category in a stable order.
var Categories = []Category{
	CategoryMinutes,
	CategoryGoalsScored,
	CategoryAssists,
	CategoryCleanSheets,
	CategoryGoalsConceded,
	CategoryOwnGoals,
	CategoryPenaltiesSaved,
	CategoryPenaltiesMissed,
	CategoryYellowCards,
	CategoryRedCards,
	CategorySaves,
	CategoryBonus,
	CategoryDefensiveContribution,
}

var knownCategories = func() map[Category]bool {
	m := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// KnownCategory reports whether c is part of the closed category set.
func KnownCategory(c Category) bool { return knownCategories[c] }

// PointsBreakdown maps scoring categories to accumulated points.
type PointsBreakdown map[Category]int

// Total sums all category points.
func (b PointsBreakdown) Total() int {
	total := 0
	for _, pts := range b {
		total += pts
	}
	return total
}

// Add accumulates points for a category.
func (b PointsBreakdown) Add(c Category, pts int) { b[c] += pts }

// Clone returns an independent copy of the breakdown.
func (b PointsBreakdown) Clone() PointsBreakdown {
	out := make(PointsBreakdown, len(b))
	for c, pts := range b {
		out[c] = pts
	}
	return out
}

// EntityBaseline is the season-wide view of one entity, built from the static
// season snapshot. Its Points breakdown is filled in by the live score
// aggregator; everything else is immutable within a request.
type EntityBaseline struct {
	ID        EntityID `json:"id"`
	Name      string   `json:"name"`
	Photo     string   `json:"photo"`
	TeamCode  TeamCode `json:"team_code"`
	TeamName  string   `json:"team_name"`
	TeamShort string   `json:"team_short"`
	Position  Position `json:"position"`

	// Cost is in tenths of the display unit, as the upstream reports it.
	Cost       int     `json:"cost"`
	SelectedBy float64 `json:"selected_by"`

	// Season-cumulative counting stats.
	Minutes               int `json:"minutes"`
	Goals                 int `json:"goals"`
	Assists               int `json:"assists"`
	CleanSheets           int `json:"clean_sheets"`
	GoalsConceded         int `json:"goals_conceded"`
	OwnGoals              int `json:"own_goals"`
	PenaltiesSaved        int `json:"penalties_saved"`
	PenaltiesMissed       int `json:"penalties_missed"`
	YellowCards           int `json:"yellow_cards"`
	RedCards              int `json:"red_cards"`
	Saves                 int `json:"saves"`
	Starts                int `json:"starts"`
	Bonus                 int `json:"bonus"`
	BPS                   int `json:"bps"`
	CBI                   int `json:"cbi"`
	Tackles               int `json:"tackles"`
	Recoveries            int `json:"recoveries"`
	DreamteamCount        int `json:"dreamteam_count"`
	DefensiveContribution int `json:"defensive_contribution"`

	// DefensiveContributionCount is derived from the category points after
	// aggregation (two points per credited contribution).
	DefensiveContributionCount int `json:"defensive_contribution_count"`

	ExpectedGoals         float64 `json:"expected_goals"`
	ExpectedAssists       float64 `json:"expected_assists"`
	ExpectedInvolvements  float64 `json:"expected_involvements"`
	ExpectedGoalsConceded float64 `json:"expected_goals_conceded"`

	// Actual-minus-expected performance deltas.
	GoalsDelta        float64 `json:"goals_delta"`
	AssistsDelta      float64 `json:"assists_delta"`
	InvolvementsDelta float64 `json:"involvements_delta"`

	TotalPoints      int     `json:"total_points"`
	PointsPerGame    float64 `json:"points_per_game"`
	PointsPerMillion float64 `json:"points_per_million"`

	// Points is the global category breakdown, summed over all rounds.
	Points PointsBreakdown `json:"points"`
}
