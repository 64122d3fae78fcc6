// Package spatialmath defines the spatial math used to relate sensor poses to
// sensing directions.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// If a cross product's norm is below this, the two vectors are treated as
// parallel for the purpose of basis construction.
const parallelEpsilon = 1e-9

// EulerAngles are three angles (in radians) used to represent the rotation of
// an object in 3D Euclidean space. The Tait-Bryan angle formalism is used,
// with rotation order z-y'-x''.
type EulerAngles struct {
	Roll  float64 // rotation about the x axis
	Pitch float64 // rotation about the y axis
	Yaw   float64 // rotation about the z axis
}

// NewZeroOrientation returns a quaternion signifying no rotation.
func NewZeroOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// QuatToEulerAngles converts a rotation quaternion (w,x,y,z) to Euler angles.
// The pitch term is clamped to [-1, 1] before the asin since floating point
// arithmetic can push the argument of a unit quaternion just outside the
// domain.
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	sinPitch := 2 * (w*y - z*x)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}

	return &EulerAngles{
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
		Pitch: math.Asin(sinPitch),
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
	}
}

// Quaternion returns the rotation quaternion corresponding to the Euler angles.
func (ea *EulerAngles) Quaternion() quat.Number {
	cr := math.Cos(ea.Roll / 2)
	sr := math.Sin(ea.Roll / 2)
	cp := math.Cos(ea.Pitch / 2)
	sp := math.Sin(ea.Pitch / 2)
	cy := math.Cos(ea.Yaw / 2)
	sy := math.Sin(ea.Yaw / 2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// LookDirection converts an orientation into the forward-facing unit direction
// of a sensor carrying it. The vector is unit length by construction.
func LookDirection(q quat.Number) r3.Vector {
	ea := QuatToEulerAngles(q)
	yaw := ea.Yaw
	pitch := -ea.Pitch
	return r3.Vector{
		X: math.Cos(yaw) * math.Cos(pitch),
		Y: math.Sin(yaw) * math.Cos(pitch),
		Z: math.Sin(pitch),
	}
}
