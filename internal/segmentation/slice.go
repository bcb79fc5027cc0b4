package segmentation

import (
	"gonum.org/v1/gonum/floats"
)

// Shape is the (Height, Width) of a 2D grid.
type Shape struct {
	Height int
	Width  int
}

// Len returns the number of pixels covered by the shape.
func (s Shape) Len() int {
	return s.Height * s.Width
}

// Grid is a row-major 2D grid of float64 values.
type Grid struct {
	Shape
	Data []float64
}

// NewGrid allocates a zero grid.
func NewGrid(height, width int) *Grid {
	return &Grid{Shape: Shape{Height: height, Width: width}, Data: make([]float64, height*width)}
}

// At returns the value at row y, column x.
func (g *Grid) At(y, x int) float64 {
	return g.Data[y*g.Width+x]
}

// RawSlice is one decoded 2D plane in its original intensity range.
type RawSlice struct {
	Grid
}

// NormalizedSlice is a RawSlice min-max rescaled into [0, 1]. Shape is the
// original (Height, Width) and is carried through the pipeline.
type NormalizedSlice struct {
	Grid
}

// Normalize rescales raw intensities into [0, 1]. A constant slice becomes
// all zeros (value minus min, without division).
func Normalize(raw *RawSlice) *NormalizedSlice {
	out := &NormalizedSlice{Grid: *NewGrid(raw.Height, raw.Width)}
	if len(raw.Data) == 0 {
		return out
	}
	lo := floats.Min(raw.Data)
	hi := floats.Max(raw.Data)
	span := hi - lo
	for i, v := range raw.Data {
		if span > 0 {
			out.Data[i] = (v - lo) / span
		} else {
			out.Data[i] = v - lo
		}
	}
	return out
}
