package segmentation

import (
	"fmt"

	"github.com/troshov/PP-KT-liver/internal/inference"
)

// DefaultThreshold is the probability above which a pixel is foreground.
const DefaultThreshold = 0.5

// ProbabilityMap holds per-pixel model scores at model resolution.
type ProbabilityMap struct {
	Shape
	Data []float32
}

// BinaryMask holds {0, 1} values in row-major order.
type BinaryMask struct {
	Shape
	Data []uint8
}

// ProbabilityPlane extracts the single 2D plane from a model output,
// dropping size-1 batch and channel dimensions.
func ProbabilityPlane(t inference.Tensor) (*ProbabilityMap, error) {
	if n := inference.ElementCount(t.Shape); n == 0 || n != int64(len(t.Data)) {
		return nil, fmt.Errorf("%w: output shape %v does not match %d values", ErrInference, t.Shape, len(t.Data))
	}
	var spatial []int64
	for _, d := range t.Shape {
		if d != 1 {
			spatial = append(spatial, d)
		}
	}
	if len(spatial) != 2 {
		return nil, fmt.Errorf("%w: output shape %v is not a single 2D plane", ErrInference, t.Shape)
	}
	data := make([]float32, len(t.Data))
	copy(data, t.Data)
	return &ProbabilityMap{
		Shape: Shape{Height: int(spatial[0]), Width: int(spatial[1])},
		Data:  data,
	}, nil
}

// Binarize marks pixels with probability strictly above threshold.
func Binarize(p *ProbabilityMap, threshold float64) *BinaryMask {
	m := &BinaryMask{Shape: p.Shape, Data: make([]uint8, len(p.Data))}
	for i, v := range p.Data {
		if float64(v) > threshold {
			m.Data[i] = 1
		}
	}
	return m
}

// Postprocess thresholds the probabilities, keeps the largest connected
// component and resamples the mask to the original slice shape.
func Postprocess(p *ProbabilityMap, original Shape, threshold float64) *BinaryMask {
	mask := KeepLargestComponent(Binarize(p, threshold))
	if mask.Shape != original {
		mask = resizeNearest(mask, original.Height, original.Width)
	}
	return mask
}

// Count returns the number of foreground pixels.
func (m *BinaryMask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v > 0 {
			n++
		}
	}
	return n
}
