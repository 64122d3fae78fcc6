package vision

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viam-labs/planeseg/pointcloud"
	"github.com/viam-labs/planeseg/segmentation"
)

func blocksWithHullSizes(sizes ...int) segmentation.Result {
	var result segmentation.Result
	for b, n := range sizes {
		hull := make([]r3.Vector, 0, n)
		for j := 0; j < n; j++ {
			hull = append(hull, r3.Vector{X: float64(b), Y: float64(j), Z: float64(b + j)})
		}
		result.Blocks = append(result.Blocks, segmentation.PlanarBlock{Hull: hull})
	}
	return result
}

func markerColorsUniform(t *testing.T, m *LineMarker, from, to int, want Color) {
	t.Helper()
	for i := from; i < to; i++ {
		test.That(t, m.Colors[i], test.ShouldResemble, want.NRGBA())
	}
}

func TestRenderHullsCounts(t *testing.T) {
	palette := DefaultPalette()
	result := blocksWithHullSizes(3, 5)

	out, err := RenderHulls(result, palette)
	test.That(t, err, test.ShouldBeNil)

	// cloud: sum of hull sizes, block-then-hull order
	test.That(t, out.HullCloud.Size(), test.ShouldEqual, 8)
	p, d := out.HullCloud.At(0)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, d.Color(), test.ShouldResemble, palette.Color(0).NRGBA())
	p, d = out.HullCloud.At(3)
	test.That(t, p, test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 1})
	test.That(t, d.Color(), test.ShouldResemble, palette.Color(1).NRGBA())

	// markers: 2n points per block, n segments each
	m := out.HullMarkers
	test.That(t, len(m.Points), test.ShouldEqual, 2*3+2*5)
	test.That(t, len(m.Colors), test.ShouldEqual, len(m.Points))
	test.That(t, m.SegmentCount(), test.ShouldEqual, 3+5)
	markerColorsUniform(t, m, 0, 2*3, palette.Color(0))
	markerColorsUniform(t, m, 2*3, 2*3+2*5, palette.Color(1))
}

func TestRenderHullsClosesPolygon(t *testing.T) {
	hull := []r3.Vector{{X: 0}, {X: 1}, {X: 1, Y: 1}}
	result := segmentation.Result{Blocks: []segmentation.PlanarBlock{{Hull: hull}}}

	out, err := RenderHulls(result, DefaultPalette())
	test.That(t, err, test.ShouldBeNil)

	m := out.HullMarkers
	test.That(t, m.Points, test.ShouldResemble, []r3.Vector{
		hull[0], hull[1], // chain
		hull[1], hull[2],
		hull[0], hull[2], // closing edge
	})
}

func TestRenderHullsDegenerate(t *testing.T) {
	for _, sizes := range [][]int{{}, {0}, {1}, {0, 1}} {
		out, err := RenderHulls(blocksWithHullSizes(sizes...), DefaultPalette())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(out.HullMarkers.Points), test.ShouldEqual, 0)
	}

	// a renderable block surrounded by degenerate ones still renders
	out, err := RenderHulls(blocksWithHullSizes(1, 2, 0), DefaultPalette())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.HullCloud.Size(), test.ShouldEqual, 3)
	test.That(t, len(out.HullMarkers.Points), test.ShouldEqual, 4)
	// the renderable block keeps its own ordinal color, not a compacted one
	test.That(t, out.HullMarkers.Colors[0], test.ShouldResemble, DefaultPalette().Color(1).NRGBA())
}

func TestRenderHullsIdempotent(t *testing.T) {
	palette := DefaultPalette()
	result := blocksWithHullSizes(4, 2, 7)

	a, err := RenderHulls(result, palette)
	test.That(t, err, test.ShouldBeNil)
	b, err := RenderHulls(result, palette)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, b.HullMarkers, test.ShouldResemble, a.HullMarkers)
	test.That(t, b.HullCloud.Size(), test.ShouldEqual, a.HullCloud.Size())
	for i := 0; i < a.HullCloud.Size(); i++ {
		ap, ad := a.HullCloud.At(i)
		bp, bd := b.HullCloud.At(i)
		test.That(t, bp, test.ShouldResemble, ap)
		test.That(t, bd.Color(), test.ShouldResemble, ad.Color())
	}
}

func TestRenderHullsPaletteCycles(t *testing.T) {
	palette, err := NewPalette(Color{R: 1}, Color{G: 1})
	test.That(t, err, test.ShouldBeNil)

	out, err := RenderHulls(blocksWithHullSizes(2, 2, 2), palette)
	test.That(t, err, test.ShouldBeNil)
	// third block wraps back to the first color
	test.That(t, out.HullMarkers.Colors[8], test.ShouldResemble, Color{R: 1}.NRGBA())

	var colors []pointcloud.Data
	out.HullCloud.Iterate(func(p r3.Vector, d pointcloud.Data) bool {
		colors = append(colors, d)
		return true
	})
	test.That(t, colors[4].Color(), test.ShouldResemble, colors[0].Color())
}

func TestPalette(t *testing.T) {
	_, err := NewPalette()
	test.That(t, err, test.ShouldNotBeNil)

	p := DefaultPalette()
	test.That(t, p.Len(), test.ShouldEqual, 28)
	for _, i := range []int{0, 3, 27, 100} {
		test.That(t, p.Color(i), test.ShouldResemble, p.Color(i+p.Len()))
	}
	test.That(t, p.Color(0), test.ShouldResemble, Color{51 / 255.0, 160 / 255.0, 44 / 255.0})
}
