package model

import "time"

// Horizon is the fixed interval a plan is scheduled over. It is declared
// once when a scenario is created and never changes afterwards.
type Horizon struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the half-open interval [start, end) lies fully
// inside the horizon.
func (h Horizon) Contains(start, end time.Time) bool {
	return !start.Before(h.Start) && !end.After(h.End)
}

// Duration returns the horizon length.
func (h Horizon) Duration() time.Duration {
	return h.End.Sub(h.Start)
}

// IsZero reports whether the horizon has not been set.
func (h Horizon) IsZero() bool {
	return h.Start.IsZero() && h.End.IsZero()
}
