package segmentation

import (
	"gonum.org/v1/gonum/stat"

	"github.com/troshov/PP-KT-liver/internal/inference"
)

// DefaultInputSide is the spatial side of the square model input.
const DefaultInputSide = 256

// PrepareInput resizes the slice to side x side, standardizes it to zero
// mean and unit variance, and wraps it as a (1, side, side, 1) tensor.
// A uniform resized slice is only mean-centred.
func PrepareInput(s *NormalizedSlice, side int) inference.Tensor {
	resized := resizeBilinear(&s.Grid, side, side)

	mean, std := stat.PopMeanStdDev(resized.Data, nil)
	data := make([]float32, len(resized.Data))
	for i, v := range resized.Data {
		if std > 0 {
			data[i] = float32((v - mean) / std)
		} else {
			data[i] = float32(v - mean)
		}
	}
	return inference.Tensor{
		Shape: []int64{1, int64(side), int64(side), 1},
		Data:  data,
	}
}
