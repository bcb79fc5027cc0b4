package segmentation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskImageUsesFullRange(t *testing.T) {
	m := &BinaryMask{Shape: Shape{Height: 2, Width: 3}, Data: []uint8{0, 1, 0, 1, 1, 0}}

	img := MaskImage(m)

	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	require.Equal(t, []uint8{0, 255, 0, 255, 255, 0}, img.Pix)
	require.Equal(t, uint8(255), img.GrayAt(0, 1).Y)
}

func TestSliceImageTruncates(t *testing.T) {
	s := &NormalizedSlice{Grid: Grid{Shape: Shape{Height: 1, Width: 4}, Data: []float64{0, 0.5, 0.999, 1}}}

	img := SliceImage(s)

	require.Equal(t, []uint8{0, 127, 254, 255}, img.Pix)
}
