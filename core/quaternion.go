package core

import "math"

// Quat is a unit attitude quaternion in (x, y, z, w) order.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat is the no-rotation attitude.
var IdentityQuat = Quat{W: 1}

// Normalize returns the quaternion scaled to unit length. The zero
// quaternion normalises to the identity.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return IdentityQuat
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Dot returns the four-dimensional dot product of two quaternions.
func (q Quat) Dot(other Quat) float64 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// AngleBetweenDeg returns the rotation angle in degrees needed to go from
// attitude a to attitude b. The absolute dot product folds the double cover
// (q and -q describe the same attitude).
func AngleBetweenDeg(a, b Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d) * 180 / math.Pi
}

// RotationBetween returns the minimal rotation taking unit vector from onto
// unit vector to. Antiparallel inputs rotate 180° about an arbitrary
// perpendicular axis.
func RotationBetween(from, to Vec3) Quat {
	f := from.Unit()
	t := to.Unit()

	d := f.Dot(t)
	if d >= 1-1e-12 {
		return IdentityQuat
	}
	if d <= -1+1e-12 {
		// Pick any axis orthogonal to f.
		axis := f.Cross(Vec3{X: 1}).Unit()
		if axis.Norm() == 0 {
			axis = f.Cross(Vec3{Y: 1}).Unit()
		}
		return Quat{X: axis.X, Y: axis.Y, Z: axis.Z, W: 0}
	}

	axis := f.Cross(t)
	q := Quat{X: axis.X, Y: axis.Y, Z: axis.Z, W: 1 + d}
	return q.Normalize()
}

// slewAngleEpsilonDeg is the angle below which no reorientation is needed.
const slewAngleEpsilonDeg = 1e-6

// SlewDurationSec returns the minimum time in seconds to rotate through
// angleDeg under a trapezoidal velocity profile bounded by the satellite's
// maximum angular velocity and acceleration, plus the fixed settling time.
// A zero-angle slew costs nothing; non-positive kinematic limits make any
// reorientation impossible and return +Inf.
func SlewDurationSec(angleDeg, maxVelDegPerSec, maxAccelDegPerSec2, settlingSec float64) float64 {
	if angleDeg <= slewAngleEpsilonDeg {
		return 0
	}
	if maxVelDegPerSec <= 0 || maxAccelDegPerSec2 <= 0 {
		return math.Inf(1)
	}

	// Angle consumed by a full accelerate-then-decelerate ramp.
	rampAngle := maxVelDegPerSec * maxVelDegPerSec / maxAccelDegPerSec2

	var t float64
	if angleDeg >= rampAngle {
		// Trapezoid: cruise at max velocity between the two ramps.
		t = angleDeg/maxVelDegPerSec + maxVelDegPerSec/maxAccelDegPerSec2
	} else {
		// Triangle: peak velocity is never reached.
		t = 2 * math.Sqrt(angleDeg/maxAccelDegPerSec2)
	}
	return t + settlingSec
}
