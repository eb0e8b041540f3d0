package domain

import "fmt"

// ExplainEntry is one (fixture, category, points) tuple from the upstream's
// explanation blocks, justifying part of an entity's round score.
type ExplainEntry struct {
	Fixture  int      `json:"fixture"`
	Category Category `json:"category"`
	Points   int      `json:"points"`
}

// RoundStats is the raw counting-stat block an entity accrued in one round.
type RoundStats struct {
	Minutes               int     `json:"minutes"`
	Goals                 int     `json:"goals"`
	Assists               int     `json:"assists"`
	CleanSheets           int     `json:"clean_sheets"`
	GoalsConceded         int     `json:"goals_conceded"`
	OwnGoals              int     `json:"own_goals"`
	PenaltiesSaved        int     `json:"penalties_saved"`
	PenaltiesMissed       int     `json:"penalties_missed"`
	YellowCards           int     `json:"yellow_cards"`
	RedCards              int     `json:"red_cards"`
	Saves                 int     `json:"saves"`
	Starts                int     `json:"starts"`
	Bonus                 int     `json:"bonus"`
	BPS                   int     `json:"bps"`
	CBI                   int     `json:"cbi"`
	Tackles               int     `json:"tackles"`
	Recoveries            int     `json:"recoveries"`
	DefensiveContribution int     `json:"defensive_contribution"`
	ExpectedGoals         float64 `json:"expected_goals"`
	ExpectedAssists       float64 `json:"expected_assists"`
	ExpectedGoalsConceded float64 `json:"expected_goals_conceded"`
	TotalPoints           int     `json:"total_points"`
	InDreamteam           bool    `json:"in_dreamteam"`
}

// EntityRoundScore couples an entity's round stats with the explanation
// entries that justify them.
type EntityRoundScore struct {
	Entity  EntityID       `json:"entity"`
	Stats   RoundStats     `json:"stats"`
	Explain []ExplainEntry `json:"explain"`
}

// RoundScoreRecord is the full live scoring feed for one round. It is fetched
// fresh or served from a short-TTL cache and never mutated.
type RoundScoreRecord struct {
	Round    int                `json:"round"`
	Entities []EntityRoundScore `json:"entities"`
}

// RoundError records a per-round fetch that was skipped during a fan-out
// pass. Passes always complete; callers inspect these to see which rounds the
// aggregate does not cover.
type RoundError struct {
	Round int
	Err   error
}

func (e RoundError) Error() string {
	return fmt.Sprintf("round %d: %v", e.Round, e.Err)
}

func (e RoundError) Unwrap() error { return e.Err }
