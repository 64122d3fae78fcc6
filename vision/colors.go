// Package vision converts planar segmentation results into colored
// visualization primitives.
package vision

import (
	"image/color"

	"github.com/pkg/errors"
)

// Color is an RGB triple with each channel in [0, 1].
type Color struct {
	R, G, B float64
}

// NRGBA scales the color to the 8-bit display range.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(c.R * 255),
		G: uint8(c.G * 255),
		B: uint8(c.B * 255),
		A: 255,
	}
}

// A Palette is a fixed, ordered, non-empty list of colors. Lookup cycles, so
// any non-negative index maps to a color.
type Palette struct {
	colors []Color
}

// NewPalette returns a palette over the given colors.
func NewPalette(colors ...Color) (*Palette, error) {
	if len(colors) == 0 {
		return nil, errors.New("a palette needs at least one color")
	}
	return &Palette{colors: colors}, nil
}

// Len returns the number of colors before the palette cycles.
func (p *Palette) Len() int {
	return len(p.colors)
}

// Color returns the color at the given index, modulo the palette length.
func (p *Palette) Color(i int) Color {
	return p.colors[i%len(p.colors)]
}

// DefaultPalette returns the palette used for hull coloring: ten ColorBrewer
// paired colors followed by pure and half-intensity mixes.
func DefaultPalette() *Palette {
	return &Palette{colors: []Color{
		{51 / 255.0, 160 / 255.0, 44 / 255.0},
		{166 / 255.0, 206 / 255.0, 227 / 255.0},
		{178 / 255.0, 223 / 255.0, 138 / 255.0},
		{31 / 255.0, 120 / 255.0, 180 / 255.0},
		{251 / 255.0, 154 / 255.0, 153 / 255.0},
		{227 / 255.0, 26 / 255.0, 28 / 255.0},
		{253 / 255.0, 191 / 255.0, 111 / 255.0},
		{106 / 255.0, 61 / 255.0, 154 / 255.0},
		{255 / 255.0, 127 / 255.0, 0 / 255.0},
		{202 / 255.0, 178 / 255.0, 214 / 255.0},
		{1.0, 0.0, 0.0},
		{0.0, 1.0, 0.0},
		{0.0, 0.0, 1.0},
		{1.0, 1.0, 0.0},
		{1.0, 0.0, 1.0},
		{0.0, 1.0, 1.0},
		{0.5, 1.0, 0.0},
		{1.0, 0.5, 0.0},
		{0.5, 0.0, 1.0},
		{1.0, 0.0, 0.5},
		{0.0, 0.5, 1.0},
		{0.0, 1.0, 0.5},
		{1.0, 0.5, 0.5},
		{0.5, 1.0, 0.5},
		{0.5, 0.5, 1.0},
		{0.5, 0.5, 1.0},
		{0.5, 1.0, 0.5},
		{0.5, 0.5, 1.0},
	}}
}
