package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/signalsfoundry/mission-planner/core"
	"github.com/signalsfoundry/mission-planner/model"
)

// ErrPlan is the base failure class every planner error unwraps to.
var ErrPlan = errors.New("plan")

var (
	// ErrValidation marks structurally malformed input: a caller error,
	// never retried.
	ErrValidation = fmt.Errorf("%w: validation", ErrPlan)
	// ErrConflict marks a temporal or kinematic clash with another staged
	// action; recoverable by choosing a different time or satellite.
	ErrConflict = fmt.Errorf("%w: conflict", ErrPlan)
	// ErrResourceViolation marks a projected battery or storage breach;
	// recoverable by shortening, relocating, or removing other actions.
	ErrResourceViolation = fmt.Errorf("%w: resource violation", ErrPlan)
)

// ValidationError reports malformed input with the specific rule violated.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a candidate clashes with staged actions on one
// satellite's timeline.
type ConflictError struct {
	SatelliteID string
	Conflicts   []core.Conflict
}

func (e *ConflictError) Error() string {
	reasons := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		reasons = append(reasons, c.Reason)
	}
	return fmt.Sprintf("conflict on satellite %s: %s", e.SatelliteID, strings.Join(reasons, "; "))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ConflictingActionIDs lists the staged actions the candidate clashed with.
func (e *ConflictError) ConflictingActionIDs() []string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.ActionID)
	}
	return ids
}

// ResourceViolationError reports a projected battery or storage breach on
// one satellite.
type ResourceViolationError struct {
	SatelliteID string
	Kind        model.ViolationKind
	Reason      string
}

func (e *ResourceViolationError) Error() string {
	return fmt.Sprintf("%s violation on satellite %s: %s", e.Kind, e.SatelliteID, e.Reason)
}

func (e *ResourceViolationError) Unwrap() error { return ErrResourceViolation }
