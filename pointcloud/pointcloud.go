// Package pointcloud defines an ordered point cloud and file I/O for it.
//
// Unlike a position-keyed cloud, points keep their insertion order; the
// clouds carried through this pipeline (hull boundaries in particular) are
// meaningful only with their ordering intact.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
)

// MetaData is data about what's stored in the point cloud.
type MetaData struct {
	HasColor bool
	HasValue bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// PointCloud is an ordered container of points. Points may repeat; insertion
// order is preserved through iteration and access.
type PointCloud interface {
	// Size returns the number of points in the cloud.
	Size() int

	// MetaData returns meta data.
	MetaData() MetaData

	// Set appends the given point to the cloud.
	Set(p r3.Vector, d Data) error

	// At returns the i-th point in insertion order along with its data.
	At(i int) (r3.Vector, Data)

	// Iterate iterates over all points in insertion order and calls the
	// given function for each one. If the function returns false,
	// iteration stops.
	Iterate(fn func(p r3.Vector, d Data) bool)
}

// NewMetaData returns new meta data with bounds ready for merging.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge updates the meta data with the given point.
func (meta *MetaData) Merge(p r3.Vector, data Data) {
	if data != nil {
		if data.HasColor() {
			meta.HasColor = true
		}
		if data.HasValue() {
			meta.HasValue = true
		}
	}

	meta.MaxX = math.Max(meta.MaxX, p.X)
	meta.MaxY = math.Max(meta.MaxY, p.Y)
	meta.MaxZ = math.Max(meta.MaxZ, p.Z)
	meta.MinX = math.Min(meta.MinX, p.X)
	meta.MinY = math.Min(meta.MinY, p.Y)
	meta.MinZ = math.Min(meta.MinZ, p.Z)
}
