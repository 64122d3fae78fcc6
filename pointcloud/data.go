package pointcloud

import (
	"image/color"
)

// Data describes the data associated with a single point within a PointCloud.
type Data interface {
	// HasColor returns whether or not this point is colored.
	HasColor() bool

	// RGB255 returns, if colored, the RGB components of the color.
	RGB255() (uint8, uint8, uint8)

	// Color returns the native color of the point.
	Color() color.Color

	// SetColor sets the given color on the point.
	SetColor(c color.NRGBA) Data

	// HasValue returns whether or not this point has a label value
	// associated with it.
	HasValue() bool

	// Value returns the label value, if it exists.
	Value() int

	// SetValue sets the given label value on the point.
	SetValue(v int) Data
}

type basicData struct {
	hasColor bool
	c        color.NRGBA

	hasValue bool
	value    int
}

// NewBasicData returns a point data that is empty.
func NewBasicData() Data {
	return &basicData{}
}

// NewColoredData returns a point data with the given color.
func NewColoredData(c color.NRGBA) Data {
	return &basicData{c: c, hasColor: true}
}

// NewValueData returns a point data with the given label value.
func NewValueData(v int) Data {
	return &basicData{value: v, hasValue: true}
}

func (bd *basicData) HasColor() bool {
	return bd.hasColor
}

func (bd *basicData) RGB255() (uint8, uint8, uint8) {
	return bd.c.R, bd.c.G, bd.c.B
}

func (bd *basicData) Color() color.Color {
	return bd.c
}

func (bd *basicData) SetColor(c color.NRGBA) Data {
	bd.hasColor = true
	bd.c = c
	return bd
}

func (bd *basicData) HasValue() bool {
	return bd.hasValue
}

func (bd *basicData) Value() int {
	return bd.value
}

func (bd *basicData) SetValue(v int) Data {
	bd.hasValue = true
	bd.value = v
	return bd
}
