package domain

import "time"

// FreshnessState is the oracle's view of the upstream scoring feed. It is
// process-wide and read-only for callers; LastUpdate is the monotonic version
// key every cache validation compares against.
type FreshnessState struct {
	Round         int       `json:"round"`
	LastUpdate    time.Time `json:"last_update"`
	IsLive        bool      `json:"is_live"`
	IsMaintenance bool      `json:"is_maintenance"`
	Message       string    `json:"message"`
}
