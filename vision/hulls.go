package vision

import (
	"image/color"

	"github.com/golang/geo/r3"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
	"github.com/viam-labs/planeseg/spatialmath"
)

const (
	hullMarkerNamespace = "hull lines"
	hullMarkerScale     = 0.03
)

// LineMarker is a single line-list primitive: consecutive point pairs form
// independent segments, and every point carries its own color. One marker
// spans all blocks of a result so a single render pass reproduces the
// palette-cycled coloring.
type LineMarker struct {
	Namespace   string
	Scale       float64
	Pose        spatialmath.Pose
	FrameLocked bool
	Points      []r3.Vector
	Colors      []color.NRGBA
}

// SegmentCount returns the number of line segments in the marker.
func (m *LineMarker) SegmentCount() int {
	return len(m.Points) / 2
}

func (m *LineMarker) push(p r3.Vector, c color.NRGBA) {
	m.Points = append(m.Points, p)
	m.Colors = append(m.Colors, c)
}

// VisualizationOutput is the ephemeral visual form of one segmentation
// result, regenerated in full every time.
type VisualizationOutput struct {
	// HullCloud holds every hull vertex of every block, in block order
	// then hull order, colored per block.
	HullCloud pointcloud.PointCloud
	// HullMarkers outlines each hull as a closed polygon.
	HullMarkers *LineMarker
}

// RenderHulls converts a segmentation result into a combined colored cloud
// and a combined line marker. The block at ordinal index i gets palette color
// i; hulls with fewer than two points contribute no segments and are not an
// error.
func RenderHulls(result segmentation.Result, palette *Palette) (*VisualizationOutput, error) {
	cloud := pointcloud.New()
	marker := &LineMarker{
		Namespace:   hullMarkerNamespace,
		Scale:       hullMarkerScale,
		Pose:        spatialmath.NewZeroPose(),
		FrameLocked: true,
	}

	for i, block := range result.Blocks {
		c := palette.Color(i).NRGBA()

		for _, p := range block.Hull {
			if err := cloud.Set(p, pointcloud.NewColoredData(c)); err != nil {
				return nil, err
			}
		}

		hull := block.Hull
		if len(hull) < 2 {
			continue
		}
		for j := 1; j < len(hull); j++ {
			marker.push(hull[j-1], c)
			marker.push(hull[j], c)
		}
		// close the polygon outline back to the first vertex
		marker.push(hull[0], c)
		marker.push(hull[len(hull)-1], c)
	}

	return &VisualizationOutput{HullCloud: cloud, HullMarkers: marker}, nil
}
