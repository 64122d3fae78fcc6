package vision

import (
	"math"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"

	"github.com/viam-labs/planeseg/segmentation"
)

// WriteHullsImage draws a top-down (xy-plane) projection of every hull
// outline to a PNG at the given path. It exists for debugging fits without a
// 3D viewer; blocks are stroked with their assigned palette colors.
func WriteHullsImage(result segmentation.Result, palette *Palette, path string, sidePx int) error {
	if sidePx <= 0 {
		return errors.Errorf("image side must be positive, got %d", sidePx)
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	hulls := 0
	for _, block := range result.Blocks {
		for _, p := range block.Hull {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		if len(block.Hull) >= 2 {
			hulls++
		}
	}
	if hulls == 0 {
		return errors.New("no drawable hulls in result")
	}

	const pad = 10.
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	scale := (float64(sidePx) - 2*pad) / span

	dc := gg.NewContext(sidePx, sidePx)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	toPx := func(x, y float64) (float64, float64) {
		// flip y so +y points up in the image
		return pad + (x-minX)*scale, float64(sidePx) - pad - (y-minY)*scale
	}

	for i, block := range result.Blocks {
		if len(block.Hull) < 2 {
			continue
		}
		c := palette.Color(i)
		dc.SetRGB(c.R, c.G, c.B)
		dc.SetLineWidth(2)
		dc.NewSubPath()
		for _, p := range block.Hull {
			dc.LineTo(toPx(p.X, p.Y))
		}
		dc.ClosePath()
		dc.Stroke()
	}

	return dc.SavePNG(path)
}
