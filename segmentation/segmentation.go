// Package segmentation models the results of planar segmentation and the
// external capability that produces them.
//
// The segmentation algorithm itself lives outside this module; it is an
// opaque collaborator reached through the Fitter interface. This package owns
// the data model on both sides of that call.
package segmentation

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/spatialmath"
)

// PlanarBlock is one detected planar surface.
type PlanarBlock struct {
	// Size is the 3D extent of the surface's bounding block.
	Size r3.Vector
	// Pose is the position and orientation of the block's local frame.
	Pose spatialmath.Pose
	// Hull is the ordered boundary polygon of the surface. The polygon is
	// implicitly closed; insertion order is the winding order and must be
	// preserved.
	Hull []r3.Vector
}

// Result is an ordered list of planar surfaces, in detection order. A Result
// is immutable once produced and is superseded wholesale by the next fit.
type Result struct {
	Blocks []PlanarBlock
}

// FitterConfig is the configuration handed to the external fitter.
type FitterConfig struct {
	Debug                bool
	RemoveGround         bool
	MaxPlaneAngleDegrees float64
	// DownsampleResolution, if non-nil, asks the fitter to downsample the
	// input cloud to this resolution (meters) first.
	DownsampleResolution *float64
}

// DefaultFitterConfig is the fixed configuration used by the orchestrator.
// The 10 degree plane angle noticeably improves elevation map segmentation
// over the 5 degrees that suits raw lidar.
func DefaultFitterConfig() FitterConfig {
	return FitterConfig{
		Debug:                true,
		RemoveGround:         false,
		MaxPlaneAngleDegrees: 10,
	}
}

// A Fitter segments a point cloud, viewed from the given sensor origin and
// look direction, into planar surfaces. Implementations are expected to be
// blocking; errors are returned to the caller untouched.
type Fitter interface {
	Fit(ctx context.Context, cloud pointcloud.PointCloud, origin, lookDir r3.Vector, cfg FitterConfig) (Result, error)
}
