package core

import (
	"context"
	"testing"
	"time"

	"github.com/signalsfoundry/mission-planner/model"
)

// targetAttitude serves fixed attitudes keyed by target ID and counts how
// often it is consulted.
type targetAttitude struct {
	byTarget map[string]Quat
	calls    int
}

func (f *targetAttitude) Quaternion(_ context.Context, _ *model.Satellite, act model.Action, _ time.Time) (Quat, error) {
	f.calls++
	if q, ok := f.byTarget[act.TargetID]; ok {
		return q, nil
	}
	return IdentityQuat, nil
}

func slewTestSatellite() *model.Satellite {
	return &model.Satellite{
		ID:                       "sat-1",
		MaxSlewVelocityDegPerSec: 0.1,
		MaxSlewAccelDegPerSec2:   10,
		SettlingTimeSec:          0,
	}
}

func obsAction(id, targetID string, start time.Time, d time.Duration) model.Action {
	return model.Action{
		ID:          id,
		Kind:        model.ActionObservation,
		SatelliteID: "sat-1",
		TargetID:    targetID,
		Start:       start,
		End:         start.Add(d),
	}
}

func ninetyDegreeAttitudes() *targetAttitude {
	return &targetAttitude{byTarget: map[string]Quat{
		"tgt-east": IdentityQuat,
		"tgt-west": quatAboutZ(90),
	}}
}

func TestCheckRejectsInfeasibleSlew(t *testing.T) {
	// 90 deg at 0.1 deg/s needs just over 900 seconds; a 5-second gap
	// cannot absorb it.
	sat := slewTestSatellite()
	checker := NewConflictChecker(ninetyDegreeAttitudes())

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := obsAction("obs-east", "tgt-east", t0, 10*time.Minute)
	candidate := obsAction("obs-west", "tgt-west", existing.End.Add(5*time.Second), 10*time.Minute)

	conflicts, err := checker.Check(context.Background(), sat, candidate, []model.Action{existing})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("conflicts = %v, want exactly one slew conflict", conflicts)
	}
	if conflicts[0].ActionID != "obs-east" {
		t.Fatalf("conflict names %q, want obs-east", conflicts[0].ActionID)
	}
}

func TestCheckAcceptsWideGap(t *testing.T) {
	sat := slewTestSatellite()
	checker := NewConflictChecker(ninetyDegreeAttitudes())

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := obsAction("obs-east", "tgt-east", t0, 10*time.Minute)
	candidate := obsAction("obs-west", "tgt-west", existing.End.Add(time.Hour), 10*time.Minute)

	conflicts, err := checker.Check(context.Background(), sat, candidate, []model.Action{existing})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("conflicts = %v, want none", conflicts)
	}
}

func TestCheckRejectsOverlap(t *testing.T) {
	sat := slewTestSatellite()
	checker := NewConflictChecker(&targetAttitude{})

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := obsAction("obs-a", "tgt-east", t0, 10*time.Minute)
	candidate := obsAction("obs-b", "tgt-east", t0.Add(5*time.Minute), 10*time.Minute)

	conflicts, err := checker.Check(context.Background(), sat, candidate, []model.Action{existing})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(conflicts) != 1 || conflicts[0].ActionID != "obs-a" {
		t.Fatalf("conflicts = %v, want one overlap with obs-a", conflicts)
	}
}

func TestCheckTouchingActionsDoNotOverlap(t *testing.T) {
	sat := slewTestSatellite()
	checker := NewConflictChecker(&targetAttitude{})

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := obsAction("obs-a", "tgt-east", t0, 10*time.Minute)
	candidate := obsAction("obs-b", "tgt-east", existing.End, 10*time.Minute)

	conflicts, err := checker.Check(context.Background(), sat, candidate, []model.Action{existing})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("conflicts = %v, want none (end == start does not overlap)", conflicts)
	}
}

func TestCheckIgnoresCandidateOwnID(t *testing.T) {
	sat := slewTestSatellite()
	checker := NewConflictChecker(&targetAttitude{})

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	act := obsAction("obs-a", "tgt-east", t0, 10*time.Minute)

	conflicts, err := checker.Check(context.Background(), sat, act, []model.Action{act})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(conflicts) != 0 {
		t.Fatalf("an action must not conflict with itself: %v", conflicts)
	}
}

func TestBoundaryAttitudesAreMemoized(t *testing.T) {
	sat := slewTestSatellite()
	fake := ninetyDegreeAttitudes()
	checker := NewConflictChecker(fake)

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	existing := obsAction("obs-east", "tgt-east", t0, 10*time.Minute)
	candidate := obsAction("obs-west", "tgt-west", existing.End.Add(time.Hour), 10*time.Minute)

	if _, err := checker.Check(context.Background(), sat, candidate, []model.Action{existing}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if checker.CachedAttitudes() != 2 {
		t.Fatalf("CachedAttitudes = %d, want 2", checker.CachedAttitudes())
	}

	callsAfterFirst := fake.calls
	if _, err := checker.Check(context.Background(), sat, candidate, []model.Action{existing}); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if fake.calls != callsAfterFirst {
		t.Fatalf("second Check made %d extra attitude calls", fake.calls-callsAfterFirst)
	}

	checker.Evict("obs-east")
	if checker.CachedAttitudes() != 1 {
		t.Fatalf("CachedAttitudes after Evict = %d, want 1", checker.CachedAttitudes())
	}
	checker.Reset()
	if checker.CachedAttitudes() != 0 {
		t.Fatalf("CachedAttitudes after Reset = %d, want 0", checker.CachedAttitudes())
	}
}

func TestTimelineSlewViolations(t *testing.T) {
	sat := slewTestSatellite()
	checker := NewConflictChecker(ninetyDegreeAttitudes())

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := obsAction("obs-east", "tgt-east", t0, 10*time.Minute)
	b := obsAction("obs-west", "tgt-west", a.End.Add(5*time.Second), 10*time.Minute)
	c := obsAction("obs-east-2", "tgt-east", b.End.Add(2*time.Hour), 10*time.Minute)

	violations, err := checker.TimelineSlewViolations(context.Background(), sat, []model.Action{c, a, b})
	if err != nil {
		t.Fatalf("TimelineSlewViolations: %v", err)
	}
	if len(violations) != 1 {
		t.Fatalf("violations = %v, want exactly one", violations)
	}
	v := violations[0]
	if v.FromActionID != "obs-east" || v.ToActionID != "obs-west" {
		t.Fatalf("violation pair = %s -> %s, want obs-east -> obs-west", v.FromActionID, v.ToActionID)
	}
	if v.RequiredSec <= v.GapSec {
		t.Fatalf("RequiredSec %v should exceed GapSec %v", v.RequiredSec, v.GapSec)
	}
}
