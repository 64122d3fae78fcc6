package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a position in 3D space along with an orientation, represented as a
// rotation quaternion. Poses are plain values; consumers receive copies and
// never alias each other's state.
type Pose struct {
	Point       r3.Vector
	Orientation quat.Number
}

// NewZeroPose returns a pose at the origin with no rotation.
func NewZeroPose() Pose {
	return Pose{Orientation: NewZeroOrientation()}
}

// LookPose builds the pose of a sensor placed at origin and looking along
// lookDir. The basis is rz = lookDir, rx = rz x global-up, ry = rz x rx.
// When lookDir is parallel to global up that cross product degenerates, so
// global X is used as the secondary axis instead, keeping the basis defined
// for every non-zero direction.
func LookPose(origin, lookDir r3.Vector) Pose {
	rz := lookDir.Normalize()
	rx := rz.Cross(r3.Vector{Z: 1})
	if rx.Norm() < parallelEpsilon {
		rx = rz.Cross(r3.Vector{X: 1})
	}
	ry := rz.Cross(rx)
	rm := NewRotationMatrixFromCols(rx.Normalize(), ry.Normalize(), rz)
	return Pose{Point: origin, Orientation: rm.Quaternion()}
}
