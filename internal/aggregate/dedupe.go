// Package aggregate computes season-to-date points breakdowns by fanning out
// over every played round's live feed and folding the explanation entries.
package aggregate

import "github.com/gwstat/fplboard/internal/domain"

// Dedupe removes repeated explanation lines within one entity's round. The
// upstream occasionally emits the same (fixture, category) line twice; only
// the first occurrence counts. Lines from distinct fixtures of a double
// round both survive.
func Dedupe(entries []domain.ExplainEntry) []domain.ExplainEntry {
	if len(entries) < 2 {
		return entries
	}
	type lineKey struct {
		fixture  int
		category domain.Category
	}
	// Round records are shared through caches, so never mutate the input.
	seen := make(map[lineKey]bool, len(entries))
	out := make([]domain.ExplainEntry, 0, len(entries))
	for _, e := range entries {
		k := lineKey{e.Fixture, e.Category}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
