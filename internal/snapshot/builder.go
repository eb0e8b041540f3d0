// Package snapshot turns the season-wide static feed into entity baselines
// and serves the raw feed through a long-TTL cache.
package snapshot

import (
	"math"

	"github.com/gwstat/fplboard/internal/domain"
	"github.com/gwstat/fplboard/internal/platform/fpl"
)

// Build converts a season snapshot into the baseline map keyed by entity id.
// Pure; safe to call on every request against a cached snapshot.
func Build(snap *fpl.SeasonSnapshot) map[domain.EntityID]*domain.EntityBaseline {
	teams := make(map[int]*fpl.APITeam, len(snap.Teams))
	for i := range snap.Teams {
		teams[snap.Teams[i].ID] = &snap.Teams[i]
	}

	out := make(map[domain.EntityID]*domain.EntityBaseline, len(snap.Elements))
	for i := range snap.Elements {
		el := &snap.Elements[i]
		b := &domain.EntityBaseline{
			ID:       domain.EntityID(el.ID),
			Name:     el.WebName,
			Photo:    el.Photo,
			TeamCode: domain.TeamCode(el.TeamCode),
			Position: domain.Position(el.ElementType),

			Cost:       el.NowCost,
			SelectedBy: float64(el.SelectedByPercent),

			Minutes:               el.Minutes,
			Goals:                 el.GoalsScored,
			Assists:               el.Assists,
			CleanSheets:           el.CleanSheets,
			GoalsConceded:         el.GoalsConceded,
			OwnGoals:              el.OwnGoals,
			PenaltiesSaved:        el.PenaltiesSaved,
			PenaltiesMissed:       el.PenaltiesMissed,
			YellowCards:           el.YellowCards,
			RedCards:              el.RedCards,
			Saves:                 el.Saves,
			Starts:                el.Starts,
			Bonus:                 el.Bonus,
			BPS:                   el.BPS,
			CBI:                   el.CBI,
			Tackles:               el.Tackles,
			Recoveries:            el.Recoveries,
			DreamteamCount:        el.DreamteamCount,
			DefensiveContribution: el.DefensiveContribution,

			ExpectedGoals:         float64(el.ExpectedGoals),
			ExpectedAssists:       float64(el.ExpectedAssists),
			ExpectedInvolvements:  float64(el.ExpectedGoalInvolvements),
			ExpectedGoalsConceded: float64(el.ExpectedGoalsConceded),

			TotalPoints:   el.TotalPoints,
			PointsPerGame: float64(el.PointsPerGame),

			Points: make(domain.PointsBreakdown),
		}
		if t, ok := teams[el.Team]; ok {
			b.TeamName = t.Name
			b.TeamShort = t.ShortName
		}

		b.GoalsDelta = round2(float64(b.Goals) - b.ExpectedGoals)
		b.AssistsDelta = round2(float64(b.Assists) - b.ExpectedAssists)
		b.InvolvementsDelta = round2(float64(b.Goals+b.Assists) - b.ExpectedInvolvements)
		if b.Cost > 0 {
			b.PointsPerMillion = round1(float64(b.TotalPoints) / (float64(b.Cost) / 10))
		}

		out[b.ID] = b
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
