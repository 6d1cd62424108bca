package core

import (
	"math"
	"testing"
)

func TestHasLineOfSightClearAbove(t *testing.T) {
	// Two satellites on the same side of the planet, well above the surface.
	a := Vec3{X: 7000, Y: 1000}
	b := Vec3{X: 7000, Y: -1000}
	if !HasLineOfSight(a, b) {
		t.Fatal("expected clear line of sight")
	}
}

func TestHasLineOfSightBlockedThroughEarth(t *testing.T) {
	a := Vec3{X: 7000}
	b := Vec3{X: -7000}
	if HasLineOfSight(a, b) {
		t.Fatal("segment through the Earth's centre must be blocked")
	}
}

func TestElevationDegreesOverhead(t *testing.T) {
	observer := Vec3{X: EarthRadiusKm}
	target := Vec3{X: EarthRadiusKm + 500}
	if got := ElevationDegrees(observer, target); math.Abs(got-90) > 1e-9 {
		t.Fatalf("overhead elevation = %v, want 90", got)
	}
}

func TestElevationDegreesHorizon(t *testing.T) {
	observer := Vec3{X: EarthRadiusKm}
	// A target in the observer's tangent plane sits on the geometric horizon.
	target := Vec3{X: EarthRadiusKm, Y: 1000}
	if got := ElevationDegrees(observer, target); math.Abs(got) > 1e-9 {
		t.Fatalf("horizon elevation = %v, want 0", got)
	}
}

func TestVec3Unit(t *testing.T) {
	v := Vec3{X: 3, Y: 4}
	u := v.Unit()
	if math.Abs(u.Norm()-1) > 1e-12 {
		t.Fatalf("unit vector norm = %v, want 1", u.Norm())
	}
	if got := (Vec3{}).Unit(); got != (Vec3{}) {
		t.Fatalf("zero vector unit = %+v, want zero", got)
	}
}
