package domain

// RosterID identifies a manager's roster (an upstream "entry").
type RosterID int64

// Selection weights. Zero means the entity sat on the bench that round.
const (
	WeightBenched       = 0
	WeightFielded       = 1
	WeightCaptain       = 2
	WeightTripleCaptain = 3
)

// SelectionRecord holds one roster's selection weights for one round.
// Entities absent from Weights were not in the squad at all.
type SelectionRecord struct {
	Roster  RosterID         `json:"roster"`
	Round   int              `json:"round"`
	Weights map[EntityID]int `json:"weights"`
}

// Weight returns the selection weight for an entity and whether the entity
// was in the squad that round.
func (s SelectionRecord) Weight(id EntityID) (int, bool) {
	w, ok := s.Weights[id]
	return w, ok
}
