package domain

// LeagueID identifies an upstream classic league.
type LeagueID int64

// CohortTier selects how much detail a cohort build carries. The summary
// tier holds the cheap fields used for first paint; the breakdown tier adds
// the full per-category points map.
type CohortTier string

const (
	TierSummary   CohortTier = "summary"
	TierBreakdown CohortTier = "breakdown"
)

// LeagueEntry is one row of a league's ranked roster list.
type LeagueEntry struct {
	Roster      RosterID `json:"roster"`
	EntryName   string   `json:"entry_name"`
	PlayerName  string   `json:"player_name"`
	Rank        int      `json:"rank"`
	LastRank    int      `json:"last_rank"`
	TotalPoints int      `json:"total_points"`
}

// RosterProfile is a roster's public metadata from the entry endpoint.
type RosterProfile struct {
	Roster      RosterID `json:"roster"`
	EntryName   string   `json:"entry_name"`
	PlayerName  string   `json:"player_name"`
	CountryCode string   `json:"country_code"`
	TotalPoints int      `json:"total_points"`
	// LeagueRanks maps league id to the roster's current rank in that league,
	// used to place a viewer who is outside the fetched cohort window.
	LeagueRanks map[LeagueID]LeagueRank `json:"league_ranks"`
}

// LeagueRank is a roster's (rank, previous rank) pair within one league.
type LeagueRank struct {
	Rank     int `json:"rank"`
	LastRank int `json:"last_rank"`
}

// RosterHistory carries the season-to-date aggregates from the entry history
// endpoint.
type RosterHistory struct {
	BenchPoints         int `json:"bench_points"`
	TransferCost        int `json:"transfer_cost"`
	OverallRank         int `json:"overall_rank"`
	PreviousOverallRank int `json:"previous_overall_rank"`
}

// CaptainSnapshot describes the armbanded entity for the current round.
// Points is nil while the round is live and the captain has not played yet;
// Pending mirrors that state for callers that have already serialized.
type CaptainSnapshot struct {
	Entity     EntityID `json:"entity"`
	Name       string   `json:"name"`
	TeamName   string   `json:"team_name"`
	TeamCode   TeamCode `json:"team_code"`
	Multiplier int      `json:"multiplier"`
	Points     *int     `json:"points"`
	Pending    bool     `json:"pending"`
}

// CohortSummary is one roster's row within a league cohort view.
type CohortSummary struct {
	Roster      RosterID `json:"roster"`
	EntryName   string   `json:"entry_name"`
	PlayerName  string   `json:"player_name"`
	CountryCode string   `json:"country_code"`
	Rank        int      `json:"rank"`
	LastRank    int      `json:"last_rank"`
	TotalPoints int      `json:"total_points"`

	OverallRank         int `json:"overall_rank"`
	PreviousOverallRank int `json:"previous_overall_rank"`
	SeasonBenchPoints   int `json:"season_bench_points"`
	TransferCost        int `json:"transfer_cost"`

	// Fold aggregates over the roster's fielded entities.
	RosterPoints                int `json:"roster_points"`
	CaptainBonus                int `json:"captain_bonus"`
	Goals                       int `json:"goals"`
	GoalsBenched                int `json:"goals_benched"`
	Assists                     int `json:"assists"`
	CleanSheets                 int `json:"clean_sheets"`
	Minutes                     int `json:"minutes"`
	Bonus                       int `json:"bonus"`
	YellowCards                 int `json:"yellow_cards"`
	RedCards                    int `json:"red_cards"`
	DreamteamCount              int `json:"dreamteam_count"`
	DefensiveContributionPoints int `json:"defensive_contribution_points"`

	Captain CaptainSnapshot `json:"captain"`

	// Negative when trailing; zero for the leader itself.
	PointsBehindCohortLeader int `json:"points_behind_cohort_leader"`
	PointsBehindGlobalLeader int `json:"points_behind_global_leader"`

	// Points is populated only on the breakdown tier.
	Points PointsBreakdown `json:"points,omitempty"`
}
