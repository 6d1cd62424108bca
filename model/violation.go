package model

// ViolationKind classifies a plan violation found during commit validation.
type ViolationKind string

const (
	ViolationTimeConflict ViolationKind = "time_conflict"
	ViolationPower        ViolationKind = "power"
	ViolationStorage      ViolationKind = "storage"
)

// Violation describes one problem detected while re-validating a full plan.
// Subject is an action ID for time conflicts and a satellite ID for
// resource violations.
type Violation struct {
	Subject              string        `json:"subject"`
	Kind                 ViolationKind `json:"kind"`
	Message              string        `json:"message"`
	ConflictingActionIDs []string      `json:"conflicting_action_ids,omitempty"`
}
