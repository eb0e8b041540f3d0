// Package query merges entity baselines with a roster overlay and applies
// the dashboard's filter, sort, and truncation policy.
package query

import (
	"fmt"
	"sort"

	"github.com/gwstat/fplboard/internal/domain"
)

const (
	// MaxRows caps a result set; the truncation flag reports overflow.
	MaxRows = 100
	// LeaderSampleSize is how many top rows feed the badge strip.
	LeaderSampleSize = 5
)

// Variant selects which dashboard table a query serves. Roster-relative
// variants merge the overlay in; the global variant reads baselines alone.
type Variant string

const (
	VariantGoals  Variant = "goals"
	VariantStarts Variant = "starts"
	VariantPoints Variant = "points"
	VariantGlobal Variant = "global"
)

// defaultSortField per variant, applied when Options.SortField is empty.
var defaultSortField = map[Variant]string{
	VariantGoals:  "goals_scored_team",
	VariantStarts: "starts_team",
	VariantPoints: "minutes_points_team",
	VariantGlobal: "total_points",
}

// Order is the sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Options narrows and orders a result set.
type Options struct {
	Variant    Variant
	Positions  []domain.Position
	MinCost    int
	MaxCost    int
	MinMinutes int
	MaxMinutes int
	SortField  string
	Order      Order
}

// Row is one merged result line. Overlay is the zero value when the entity
// was never selected by the roster, so every roster-relative field reads as
// zero instead of the entity going missing.
type Row struct {
	Base     *domain.EntityBaseline `json:"base"`
	Overlay  domain.RosterOverlay   `json:"overlay"`
	Selected bool                   `json:"selected"`
}

// LeaderBadge is the minimal slice of a top row the badge strip renders.
type LeaderBadge struct {
	Entity   domain.EntityID `json:"entity"`
	Name     string          `json:"name"`
	Photo    string          `json:"photo"`
	TeamCode domain.TeamCode `json:"team_code"`
	Value    float64         `json:"value"`
}

// Result is a finished query.
type Result struct {
	Rows      []Row         `json:"rows"`
	Leaders   []LeaderBadge `json:"leaders"`
	Truncated bool          `json:"truncated"`
}

// Run merges, filters, sorts, and truncates. overlays may be nil for the
// global variant. Pure; all data access happens before the call.
func Run(baselines map[domain.EntityID]*domain.EntityBaseline, overlays map[domain.EntityID]*domain.RosterOverlay, opts Options) (*Result, error) {
	if opts.Variant == "" {
		opts.Variant = VariantGoals
	}
	if opts.SortField == "" {
		opts.SortField = defaultSortField[opts.Variant]
	}
	if opts.Order == "" {
		opts.Order = OrderDesc
	}

	col, ok := fields[opts.SortField]
	if !ok {
		return nil, fmt.Errorf("query: unknown sort field %q", opts.SortField)
	}
	if opts.Variant == VariantGlobal && col.overlay {
		return nil, fmt.Errorf("query: sort field %q needs a roster overlay", opts.SortField)
	}
	field := col.value

	rows := make([]Row, 0, len(baselines))
	for id, base := range baselines {
		row := Row{Base: base}
		if overlays != nil {
			if o, ok := overlays[id]; ok {
				row.Overlay = *o
				row.Selected = true
			}
		}
		if !matches(&row, &opts) {
			continue
		}
		if !includeBySign(opts.SortField, field(&row)) {
			continue
		}
		rows = append(rows, row)
	}

	// Plain numeric order in both directions. For a negative-only column,
	// descending therefore runs least negative to most negative. Stable, so
	// ties keep their input order.
	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := field(&rows[i]), field(&rows[j])
		if opts.Order == OrderAsc {
			return vi < vj
		}
		return vi > vj
	})

	result := &Result{}
	for i := 0; i < len(rows) && i < LeaderSampleSize; i++ {
		result.Leaders = append(result.Leaders, LeaderBadge{
			Entity:   rows[i].Base.ID,
			Name:     rows[i].Base.Name,
			Photo:    rows[i].Base.Photo,
			TeamCode: rows[i].Base.TeamCode,
			Value:    field(&rows[i]),
		})
	}
	if len(rows) > MaxRows {
		rows = rows[:MaxRows]
		result.Truncated = true
	}
	result.Rows = rows
	return result, nil
}

// matches applies the positional, cost, and minutes predicates.
func matches(r *Row, opts *Options) bool {
	if len(opts.Positions) > 0 {
		found := false
		for _, p := range opts.Positions {
			if r.Base.Position == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if opts.MinCost > 0 && r.Base.Cost < opts.MinCost {
		return false
	}
	if opts.MaxCost > 0 && r.Base.Cost > opts.MaxCost {
		return false
	}
	if opts.MinMinutes > 0 && r.Base.Minutes < opts.MinMinutes {
		return false
	}
	if opts.MaxMinutes > 0 && r.Base.Minutes > opts.MaxMinutes {
		return false
	}
	return true
}

// includeBySign applies the column-sign policy: negative-only columns admit
// only values below zero, either-sign columns admit any nonzero value, and
// everything else admits only values above zero.
func includeBySign(field string, v float64) bool {
	switch {
	case negativeFields[field]:
		return v < 0
	case eitherSignFields[field]:
		return v != 0
	default:
		return v > 0
	}
}
