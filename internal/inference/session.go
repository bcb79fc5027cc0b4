package inference

import (
	"context"
	"errors"
	"fmt"
)

// ErrModelLoad reports a model artifact that is missing or cannot be loaded.
var ErrModelLoad = errors.New("model load error")

// Tensor is a dense float32 tensor in row-major order.
type Tensor struct {
	Shape []int64
	Data  []float32
}

// NewTensor checks that data fits shape.
func NewTensor(shape []int64, data []float32) (Tensor, error) {
	if n := ElementCount(shape); n != int64(len(data)) {
		return Tensor{}, fmt.Errorf("tensor shape %v holds %d elements, got %d", shape, n, len(data))
	}
	return Tensor{Shape: shape, Data: data}, nil
}

// ElementCount multiplies the dimensions of shape.
func ElementCount(shape []int64) int64 {
	if len(shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// Session is a loaded model ready to be invoked. Implementations must be
// safe for concurrent Run calls; the owner calls Close once at shutdown.
type Session interface {
	InputName() string
	OutputName() string
	Run(ctx context.Context, outputs []string, inputs map[string]Tensor) ([]Tensor, error)
	Describe() string
	Close() error
}
