package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/mission-planner/model"
)

// Conflict names one staged action the candidate clashes with and why.
type Conflict struct {
	ActionID string
	Reason   string
}

// boundaryAttitudes caches the attitude held at an action's two boundaries.
type boundaryAttitudes struct {
	start Quat
	end   Quat
}

// ConflictChecker decides whether a candidate action can be inserted into a
// satellite's timeline without temporal overlap and without exceeding the
// satellite's slew kinematics between chronological neighbours.
//
// Checks are deterministic and side-effect-free apart from populating the
// per-action quaternion cache.
type ConflictChecker struct {
	attitude AttitudeProvider

	mu    sync.Mutex
	cache map[string]boundaryAttitudes
}

// NewConflictChecker constructs a checker backed by the given attitude
// provider.
func NewConflictChecker(attitude AttitudeProvider) *ConflictChecker {
	return &ConflictChecker{
		attitude: attitude,
		cache:    make(map[string]boundaryAttitudes),
	}
}

// Check tests candidate against the satellite's existing timeline and
// returns the list of conflicting action IDs (empty means feasible). The
// timeline must contain every action referencing sat as initiator or peer;
// an entry sharing the candidate's ID is ignored so commit-time
// re-validation can test an action against its own timeline.
//
// Overlap and slew checks are independent; both sets of conflicts are
// reported.
func (c *ConflictChecker) Check(ctx context.Context, sat *model.Satellite, candidate model.Action, timeline []model.Action) ([]Conflict, error) {
	others := make([]model.Action, 0, len(timeline))
	for _, a := range timeline {
		if a.ID == candidate.ID {
			continue
		}
		others = append(others, a)
	}

	var conflicts []Conflict

	// Half-open interval intersection; exactly touching actions are fine.
	overlapping := make(map[string]struct{})
	for _, a := range others {
		if candidate.Overlaps(a) {
			overlapping[a.ID] = struct{}{}
			conflicts = append(conflicts, Conflict{
				ActionID: a.ID,
				Reason:   fmt.Sprintf("time overlap with %s on satellite %s", a.ID, sat.ID),
			})
		}
	}

	prev, next := neighbours(candidate, others)

	if prev != nil {
		if _, overlaps := overlapping[prev.ID]; !overlaps {
			conflict, err := c.slewConflict(ctx, sat, *prev, candidate, true)
			if err != nil {
				return nil, err
			}
			if conflict != nil {
				conflicts = append(conflicts, *conflict)
			}
		}
	}
	if next != nil {
		if _, overlaps := overlapping[next.ID]; !overlaps {
			conflict, err := c.slewConflict(ctx, sat, *next, candidate, false)
			if err != nil {
				return nil, err
			}
			if conflict != nil {
				conflicts = append(conflicts, *conflict)
			}
		}
	}

	return conflicts, nil
}

// slewConflict tests whether the satellite can reorient between the
// candidate and one neighbour within the time gap separating them. For a
// preceding neighbour the slew runs neighbour-end → candidate-start; for a
// following one it runs candidate-end → neighbour-start.
func (c *ConflictChecker) slewConflict(ctx context.Context, sat *model.Satellite, neighbour, candidate model.Action, preceding bool) (*Conflict, error) {
	nq, err := c.boundaryQuats(ctx, sat, neighbour)
	if err != nil {
		return nil, err
	}
	cq, err := c.boundaryQuats(ctx, sat, candidate)
	if err != nil {
		return nil, err
	}

	var angleDeg, gapSec float64
	if preceding {
		angleDeg = AngleBetweenDeg(nq.end, cq.start)
		gapSec = candidate.Start.Sub(neighbour.End).Seconds()
	} else {
		angleDeg = AngleBetweenDeg(cq.end, nq.start)
		gapSec = neighbour.Start.Sub(candidate.End).Seconds()
	}

	required := SlewDurationSec(angleDeg,
		sat.MaxSlewVelocityDegPerSec,
		sat.MaxSlewAccelDegPerSec2,
		sat.SettlingTimeSec,
	)
	if required <= gapSec {
		return nil, nil
	}
	return &Conflict{
		ActionID: neighbour.ID,
		Reason: fmt.Sprintf("slew of %.2f° to/from %s needs %.1fs but only %.1fs available",
			angleDeg, neighbour.ID, required, gapSec),
	}, nil
}

// boundaryQuats returns the attitude at the action's start and end,
// memoized by action ID.
func (c *ConflictChecker) boundaryQuats(ctx context.Context, sat *model.Satellite, act model.Action) (boundaryAttitudes, error) {
	c.mu.Lock()
	if q, ok := c.cache[act.ID]; ok {
		c.mu.Unlock()
		return q, nil
	}
	c.mu.Unlock()

	start, err := c.attitude.Quaternion(ctx, sat, act, act.Start)
	if err != nil {
		return boundaryAttitudes{}, fmt.Errorf("attitude at start of %s: %w", act.ID, err)
	}
	end, err := c.attitude.Quaternion(ctx, sat, act, act.End)
	if err != nil {
		return boundaryAttitudes{}, fmt.Errorf("attitude at end of %s: %w", act.ID, err)
	}

	q := boundaryAttitudes{start: start, end: end}
	c.mu.Lock()
	c.cache[act.ID] = q
	c.mu.Unlock()
	return q, nil
}

// Evict drops cached quaternions for the given action IDs. The plan store
// calls this when actions are unstaged.
func (c *ConflictChecker) Evict(actionIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range actionIDs {
		delete(c.cache, id)
	}
}

// Reset flushes the entire quaternion cache.
func (c *ConflictChecker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]boundaryAttitudes)
}

// CachedAttitudes reports how many actions currently have memoized
// boundary quaternions.
func (c *ConflictChecker) CachedAttitudes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// SlewViolation reports one adjacent pair on a timeline whose required
// reorientation time exceeds the gap between them.
type SlewViolation struct {
	FromActionID string
	ToActionID   string
	AngleDeg     float64
	RequiredSec  float64
	GapSec       float64
}

// TimelineSlewViolations walks a satellite's timeline in chronological
// order and reports every adjacent pair the satellite cannot slew between
// in time. Overlapping pairs are skipped; the overlap check owns those.
// Used by full-plan commit validation, which never fails fast.
func (c *ConflictChecker) TimelineSlewViolations(ctx context.Context, sat *model.Satellite, timeline []model.Action) ([]SlewViolation, error) {
	if len(timeline) < 2 {
		return nil, nil
	}

	sorted := append([]model.Action(nil), timeline...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var violations []SlewViolation
	for i := 1; i < len(sorted); i++ {
		from, to := sorted[i-1], sorted[i]
		if from.End.After(to.Start) {
			continue
		}

		fq, err := c.boundaryQuats(ctx, sat, from)
		if err != nil {
			return nil, err
		}
		tq, err := c.boundaryQuats(ctx, sat, to)
		if err != nil {
			return nil, err
		}

		angle := AngleBetweenDeg(fq.end, tq.start)
		required := SlewDurationSec(angle,
			sat.MaxSlewVelocityDegPerSec,
			sat.MaxSlewAccelDegPerSec2,
			sat.SettlingTimeSec,
		)
		gap := to.Start.Sub(from.End).Seconds()
		if required > gap {
			violations = append(violations, SlewViolation{
				FromActionID: from.ID,
				ToActionID:   to.ID,
				AngleDeg:     angle,
				RequiredSec:  required,
				GapSec:       gap,
			})
		}
	}
	return violations, nil
}

// neighbours returns the nearest action ending at or before the candidate
// starts and the nearest action starting at or after the candidate ends.
// Either may be nil when the candidate is first or last on the timeline.
func neighbours(candidate model.Action, timeline []model.Action) (prev, next *model.Action) {
	sorted := append([]model.Action(nil), timeline...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	for i := range sorted {
		a := sorted[i]
		if !a.End.After(candidate.Start) {
			if prev == nil || a.End.After(prev.End) {
				prev = &sorted[i]
			}
		}
		if !a.Start.Before(candidate.End) {
			if next == nil || a.Start.Before(next.Start) {
				next = &sorted[i]
			}
		}
	}
	return prev, next
}
