// Package gridmap holds 2D grids of per-cell samples, the usual carrier of
// elevation maps, and adapts them into point clouds.
package gridmap

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/viam-labs/planeseg/pointcloud"
)

// GridMap is a regular 2D grid with one or more named layers of float
// samples. The grid is centered on Center; cell (i, j) spans resolution
// meters in x and y. Cells may hold NaN where no sample exists.
type GridMap struct {
	resolution float64
	rows, cols int
	center     r3.Vector
	layers     map[string]*mat.Dense
}

// NewGridMap returns an empty grid map with the given geometry.
func NewGridMap(resolution float64, rows, cols int, center r3.Vector) (*GridMap, error) {
	if resolution <= 0 {
		return nil, errors.Errorf("resolution must be positive, got %v", resolution)
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.Errorf("grid dimensions must be positive, got %dx%d", rows, cols)
	}
	return &GridMap{
		resolution: resolution,
		rows:       rows,
		cols:       cols,
		center:     center,
		layers:     map[string]*mat.Dense{},
	}, nil
}

// Resolution returns the cell edge length in meters.
func (gm *GridMap) Resolution() float64 {
	return gm.resolution
}

// Size returns the grid dimensions as rows, cols.
func (gm *GridMap) Size() (int, int) {
	return gm.rows, gm.cols
}

// Layers returns the number of layers set on the map.
func (gm *GridMap) Layers() int {
	return len(gm.layers)
}

// SetLayer sets the named layer. The matrix dimensions must match the grid.
func (gm *GridMap) SetLayer(name string, values *mat.Dense) error {
	r, c := values.Dims()
	if r != gm.rows || c != gm.cols {
		return errors.Errorf("layer %q is %dx%d, want %dx%d", name, r, c, gm.rows, gm.cols)
	}
	gm.layers[name] = values
	return nil
}

// cellCenter returns the world xy position of cell (i, j).
func (gm *GridMap) cellCenter(i, j int) (float64, float64) {
	x := gm.center.X - float64(gm.rows)*gm.resolution/2 + (float64(i)+0.5)*gm.resolution
	y := gm.center.Y - float64(gm.cols)*gm.resolution/2 + (float64(j)+0.5)*gm.resolution
	return x, y
}

// ToPointCloud converts the named layer into a point cloud: one point per
// cell with a finite sample, the sample value as z. Cells are visited in
// row-major order so conversion is deterministic.
func (gm *GridMap) ToPointCloud(layer string) (pointcloud.PointCloud, error) {
	values, ok := gm.layers[layer]
	if !ok {
		return nil, errors.Errorf("grid map has no layer %q", layer)
	}

	cloud := pointcloud.NewWithPrealloc(gm.rows * gm.cols)
	for i := 0; i < gm.rows; i++ {
		for j := 0; j < gm.cols; j++ {
			z := values.At(i, j)
			if math.IsNaN(z) {
				continue
			}
			x, y := gm.cellCenter(i, j)
			if err := cloud.Set(r3.Vector{X: x, Y: y, Z: z + gm.center.Z}, pointcloud.NewBasicData()); err != nil {
				return nil, err
			}
		}
	}
	return cloud, nil
}
