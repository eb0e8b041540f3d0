package fpl

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gwstat/fplboard/internal/domain"
)

// flexFloat unmarshals from a JSON number or a numeric string. The upstream
// reports expected-goal figures and a few other numerics as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

// --------------------------------------------------------------------------
// Season snapshot (bootstrap-static)
// --------------------------------------------------------------------------

// SeasonSnapshot is the season-wide static feed: entities, teams, and rounds
// with their lifecycle flags.
type SeasonSnapshot struct {
	Events       []APIRound  `json:"events"`
	Teams        []APITeam   `json:"teams"`
	Elements     []APIEntity `json:"elements"`
	TotalPlayers int         `json:"total_players"`
}

// CurrentRound returns the round flagged as current, or 0 before the season
// starts.
func (s *SeasonSnapshot) CurrentRound() int {
	for _, e := range s.Events {
		if e.IsCurrent {
			return e.ID
		}
	}
	return 0
}

// RoundFinished reports whether the given round has finished.
func (s *SeasonSnapshot) RoundFinished(round int) bool {
	for _, e := range s.Events {
		if e.ID == round {
			return e.Finished
		}
	}
	return false
}

// APIRound is one fixture window in the season calendar.
type APIRound struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	Finished  bool `json:"finished"`
}

// APITeam is a club record from the season snapshot.
type APITeam struct {
	ID        int    `json:"id"`
	Code      int    `json:"code"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// APIEntity is an athlete record from the season snapshot.
type APIEntity struct {
	ID                       int       `json:"id"`
	WebName                  string    `json:"web_name"`
	Photo                    string    `json:"photo"`
	ElementType              int       `json:"element_type"`
	Team                     int       `json:"team"`
	TeamCode                 int       `json:"team_code"`
	NowCost                  int       `json:"now_cost"`
	SelectedByPercent        flexFloat `json:"selected_by_percent"`
	Minutes                  int       `json:"minutes"`
	GoalsScored              int       `json:"goals_scored"`
	Assists                  int       `json:"assists"`
	CleanSheets              int       `json:"clean_sheets"`
	GoalsConceded            int       `json:"goals_conceded"`
	OwnGoals                 int       `json:"own_goals"`
	PenaltiesSaved           int       `json:"penalties_saved"`
	PenaltiesMissed          int       `json:"penalties_missed"`
	YellowCards              int       `json:"yellow_cards"`
	RedCards                 int       `json:"red_cards"`
	Saves                    int       `json:"saves"`
	Starts                   int       `json:"starts"`
	Bonus                    int       `json:"bonus"`
	BPS                      int       `json:"bps"`
	CBI                      int       `json:"clearances_blocks_interceptions"`
	Tackles                  int       `json:"tackles"`
	Recoveries               int       `json:"recoveries"`
	DreamteamCount           int       `json:"dreamteam_count"`
	DefensiveContribution    int       `json:"defensive_contribution"`
	ExpectedGoals            flexFloat `json:"expected_goals"`
	ExpectedAssists          flexFloat `json:"expected_assists"`
	ExpectedGoalInvolvements flexFloat `json:"expected_goal_involvements"`
	ExpectedGoalsConceded    flexFloat `json:"expected_goals_conceded"`
	TotalPoints              int       `json:"total_points"`
	PointsPerGame            flexFloat `json:"points_per_game"`
}

// --------------------------------------------------------------------------
// Live round scores
// --------------------------------------------------------------------------

// APIRoundScores is the per-round live feed body.
type APIRoundScores struct {
	Elements []APIElementScore `json:"elements"`
}

// APIElementScore is one entity's live block for a round.
type APIElementScore struct {
	ID      int               `json:"id"`
	Stats   APIRoundStats     `json:"stats"`
	Explain []APIExplainBlock `json:"explain"`
}

// APIRoundStats mirrors the upstream per-round stat block.
type APIRoundStats struct {
	Minutes               int       `json:"minutes"`
	GoalsScored           int       `json:"goals_scored"`
	Assists               int       `json:"assists"`
	CleanSheets           int       `json:"clean_sheets"`
	GoalsConceded         int       `json:"goals_conceded"`
	OwnGoals              int       `json:"own_goals"`
	PenaltiesSaved        int       `json:"penalties_saved"`
	PenaltiesMissed       int       `json:"penalties_missed"`
	YellowCards           int       `json:"yellow_cards"`
	RedCards              int       `json:"red_cards"`
	Saves                 int       `json:"saves"`
	Starts                int       `json:"starts"`
	Bonus                 int       `json:"bonus"`
	BPS                   int       `json:"bps"`
	CBI                   int       `json:"clearances_blocks_interceptions"`
	Tackles               int       `json:"tackles"`
	Recoveries            int       `json:"recoveries"`
	DefensiveContribution int       `json:"defensive_contribution"`
	ExpectedGoals         flexFloat `json:"expected_goals"`
	ExpectedAssists       flexFloat `json:"expected_assists"`
	ExpectedGoalsConceded flexFloat `json:"expected_goals_conceded"`
	TotalPoints           int       `json:"total_points"`
	InDreamteam           bool      `json:"in_dreamteam"`
}

// APIExplainBlock is one fixture's worth of explanation entries.
type APIExplainBlock struct {
	Fixture int              `json:"fixture"`
	Stats   []APIExplainStat `json:"stats"`
}

// APIExplainStat is a single (identifier, points) explanation line.
type APIExplainStat struct {
	Identifier string `json:"identifier"`
	Points     int    `json:"points"`
	Value      int    `json:"value"`
}

// ToDomainRecord flattens the live feed into a RoundScoreRecord. Explanation
// lines with identifiers outside the closed category set are dropped here.
func (r *APIRoundScores) ToDomainRecord(round int) domain.RoundScoreRecord {
	rec := domain.RoundScoreRecord{
		Round:    round,
		Entities: make([]domain.EntityRoundScore, 0, len(r.Elements)),
	}
	for i := range r.Elements {
		el := &r.Elements[i]
		score := domain.EntityRoundScore{
			Entity: domain.EntityID(el.ID),
			Stats: domain.RoundStats{
				Minutes:               el.Stats.Minutes,
				Goals:                 el.Stats.GoalsScored,
				Assists:               el.Stats.Assists,
				CleanSheets:           el.Stats.CleanSheets,
				GoalsConceded:         el.Stats.GoalsConceded,
				OwnGoals:              el.Stats.OwnGoals,
				PenaltiesSaved:        el.Stats.PenaltiesSaved,
				PenaltiesMissed:       el.Stats.PenaltiesMissed,
				YellowCards:           el.Stats.YellowCards,
				RedCards:              el.Stats.RedCards,
				Saves:                 el.Stats.Saves,
				Starts:                el.Stats.Starts,
				Bonus:                 el.Stats.Bonus,
				BPS:                   el.Stats.BPS,
				CBI:                   el.Stats.CBI,
				Tackles:               el.Stats.Tackles,
				Recoveries:            el.Stats.Recoveries,
				DefensiveContribution: el.Stats.DefensiveContribution,
				ExpectedGoals:         float64(el.Stats.ExpectedGoals),
				ExpectedAssists:       float64(el.Stats.ExpectedAssists),
				ExpectedGoalsConceded: float64(el.Stats.ExpectedGoalsConceded),
				TotalPoints:           el.Stats.TotalPoints,
				InDreamteam:           el.Stats.InDreamteam,
			},
		}
		for _, blk := range el.Explain {
			for _, s := range blk.Stats {
				cat := domain.Category(s.Identifier)
				if !domain.KnownCategory(cat) {
					continue
				}
				score.Explain = append(score.Explain, domain.ExplainEntry{
					Fixture:  blk.Fixture,
					Category: cat,
					Points:   s.Points,
				})
			}
		}
		rec.Entities = append(rec.Entities, score)
	}
	return rec
}

// --------------------------------------------------------------------------
// Roster selections (picks)
// --------------------------------------------------------------------------

// APIPicks is the per-roster per-round selection body.
type APIPicks struct {
	Picks []APIPick `json:"picks"`
}

// APIPick is a single selection slot.
type APIPick struct {
	Element    int  `json:"element"`
	Position   int  `json:"position"`
	Multiplier int  `json:"multiplier"`
	IsCaptain  bool `json:"is_captain"`
}

// ToDomainRecord converts the picks body into a SelectionRecord.
func (p *APIPicks) ToDomainRecord(roster domain.RosterID, round int) domain.SelectionRecord {
	rec := domain.SelectionRecord{
		Roster:  roster,
		Round:   round,
		Weights: make(map[domain.EntityID]int, len(p.Picks)),
	}
	for _, pick := range p.Picks {
		rec.Weights[domain.EntityID(pick.Element)] = pick.Multiplier
	}
	return rec
}

// --------------------------------------------------------------------------
// League standings
// --------------------------------------------------------------------------

// APIStandings is the classic-league standings body.
type APIStandings struct {
	League struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		Results []APIStandingRow `json:"results"`
	} `json:"standings"`
}

// APIStandingRow is one ranked roster in a league listing.
type APIStandingRow struct {
	Entry      int64  `json:"entry"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
	Rank       int    `json:"rank"`
	LastRank   int    `json:"last_rank"`
	Total      int    `json:"total"`
}

// ToDomainEntry converts a standings row to a LeagueEntry.
func (r *APIStandingRow) ToDomainEntry() domain.LeagueEntry {
	return domain.LeagueEntry{
		Roster:      domain.RosterID(r.Entry),
		EntryName:   r.EntryName,
		PlayerName:  r.PlayerName,
		Rank:        r.Rank,
		LastRank:    r.LastRank,
		TotalPoints: r.Total,
	}
}

// --------------------------------------------------------------------------
// Entry (roster profile) and history
// --------------------------------------------------------------------------

// APIEntry is a roster's public profile.
type APIEntry struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	PlayerFirstName string `json:"player_first_name"`
	PlayerLastName  string `json:"player_last_name"`
	RegionCodeShort string `json:"player_region_iso_code_short"`
	OverallPoints   int    `json:"summary_overall_points"`
	Leagues         struct {
		Classic []APIEntryLeague `json:"classic"`
	} `json:"leagues"`
}

// APIEntryLeague is the roster's membership record in one classic league.
type APIEntryLeague struct {
	ID        int64 `json:"id"`
	EntryRank int   `json:"entry_rank"`
	LastRank  int   `json:"entry_last_rank"`
}

// ToDomainProfile converts the entry body into a RosterProfile.
func (e *APIEntry) ToDomainProfile() domain.RosterProfile {
	p := domain.RosterProfile{
		Roster:      domain.RosterID(e.ID),
		EntryName:   e.Name,
		PlayerName:  strings.TrimSpace(e.PlayerFirstName + " " + e.PlayerLastName),
		CountryCode: strings.ToLower(e.RegionCodeShort),
		TotalPoints: e.OverallPoints,
		LeagueRanks: make(map[domain.LeagueID]domain.LeagueRank, len(e.Leagues.Classic)),
	}
	for _, l := range e.Leagues.Classic {
		p.LeagueRanks[domain.LeagueID(l.ID)] = domain.LeagueRank{Rank: l.EntryRank, LastRank: l.LastRank}
	}
	return p
}

// APIEntryHistory is a roster's season history body.
type APIEntryHistory struct {
	Current []APIHistoryRound `json:"current"`
}

// APIHistoryRound is one round of a roster's season history.
type APIHistoryRound struct {
	Event         int `json:"event"`
	Points        int `json:"points"`
	PointsOnBench int `json:"points_on_bench"`
	TransfersCost int `json:"event_transfers_cost"`
	OverallRank   int `json:"overall_rank"`
}

// ToDomainHistory folds the per-round history into season aggregates.
func (h *APIEntryHistory) ToDomainHistory() domain.RosterHistory {
	var out domain.RosterHistory
	for _, rnd := range h.Current {
		out.BenchPoints += rnd.PointsOnBench
		out.TransferCost += rnd.TransfersCost
	}
	if n := len(h.Current); n > 0 {
		out.OverallRank = h.Current[n-1].OverallRank
		if n > 1 {
			out.PreviousOverallRank = h.Current[n-2].OverallRank
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Event status
// --------------------------------------------------------------------------

// APIEventStatus is the status feed the freshness oracle polls.
type APIEventStatus struct {
	Status  []APIDayStatus `json:"status"`
	Leagues string         `json:"leagues"`
}

// APIDayStatus is one day of the current round's scoring state. Points is
// "l" while scoring is mid-flight and "r" once finalized.
type APIDayStatus struct {
	Event      int    `json:"event"`
	Date       string `json:"date"`
	Points     string `json:"points"`
	BonusAdded bool   `json:"bonus_added"`
}

// Round returns the highest round mentioned by the feed, defaulting to 1.
func (s *APIEventStatus) Round() int {
	round := 1
	for _, d := range s.Status {
		if d.Event > round {
			round = d.Event
		}
	}
	return round
}

// Live reports whether any day of the round is still scoring.
func (s *APIEventStatus) Live() bool {
	for _, d := range s.Status {
		if d.Points == "l" {
			return true
		}
	}
	return false
}

// Updating reports whether the upstream is writing league tables, which the
// oracle treats as maintenance.
func (s *APIEventStatus) Updating() bool {
	return strings.EqualFold(s.Leagues, "Updating")
}
