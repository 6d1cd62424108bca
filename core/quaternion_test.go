package core

import (
	"math"
	"testing"
)

func quatAboutZ(angleDeg float64) Quat {
	half := angleDeg * math.Pi / 360
	return Quat{Z: math.Sin(half), W: math.Cos(half)}
}

func TestAngleBetweenDeg(t *testing.T) {
	cases := []struct {
		name string
		a, b Quat
		want float64
	}{
		{"identical", IdentityQuat, IdentityQuat, 0},
		{"ninety about z", IdentityQuat, quatAboutZ(90), 90},
		{"thirty about z", quatAboutZ(10), quatAboutZ(40), 30},
		{"double cover", IdentityQuat, Quat{W: -1}, 0},
	}
	for _, tc := range cases {
		if got := AngleBetweenDeg(tc.a, tc.b); math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("%s: AngleBetweenDeg = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRotationBetweenOrthogonal(t *testing.T) {
	q := RotationBetween(Vec3{X: 1}, Vec3{Y: 1})
	if got := AngleBetweenDeg(IdentityQuat, q); math.Abs(got-90) > 1e-6 {
		t.Fatalf("rotation x->y should be 90 deg, got %v", got)
	}
}

func TestRotationBetweenParallel(t *testing.T) {
	q := RotationBetween(Vec3{X: 2}, Vec3{X: 5})
	if got := AngleBetweenDeg(IdentityQuat, q); got > 1e-6 {
		t.Fatalf("parallel vectors should need no rotation, got %v deg", got)
	}
}

func TestRotationBetweenAntiparallel(t *testing.T) {
	q := RotationBetween(Vec3{X: 1}, Vec3{X: -1})
	if got := AngleBetweenDeg(IdentityQuat, q); math.Abs(got-180) > 1e-6 {
		t.Fatalf("antiparallel vectors should need 180 deg, got %v", got)
	}
}

func TestSlewDurationTrapezoid(t *testing.T) {
	// 90 deg at 1 deg/s with 1 deg/s^2: ramp angle 1 deg, so cruise applies.
	got := SlewDurationSec(90, 1, 1, 5)
	want := 90.0/1.0 + 1.0/1.0 + 5.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SlewDurationSec = %v, want %v", got, want)
	}
}

func TestSlewDurationTriangle(t *testing.T) {
	// 0.4 deg at 1 deg/s with 2 deg/s^2: ramp angle 0.5 deg, peak never reached.
	got := SlewDurationSec(0.4, 1, 2, 0)
	want := 2 * math.Sqrt(0.4/2)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SlewDurationSec = %v, want %v", got, want)
	}
}

func TestSlewDurationZeroAngle(t *testing.T) {
	if got := SlewDurationSec(0, 1, 1, 5); got != 0 {
		t.Fatalf("zero-angle slew should cost nothing, got %v", got)
	}
}

func TestSlewDurationDegenerateLimits(t *testing.T) {
	if got := SlewDurationSec(10, 0, 1, 0); !math.IsInf(got, 1) {
		t.Fatalf("zero velocity limit should be infeasible, got %v", got)
	}
	if got := SlewDurationSec(10, 1, 0, 0); !math.IsInf(got, 1) {
		t.Fatalf("zero acceleration limit should be infeasible, got %v", got)
	}
}

func TestNormalizeZeroQuat(t *testing.T) {
	if got := (Quat{}).Normalize(); got != IdentityQuat {
		t.Fatalf("zero quaternion should normalise to identity, got %+v", got)
	}
}
