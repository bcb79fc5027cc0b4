// Package segmentation turns one medical image slice into a single-component
// liver mask and simple volumetric measurements.
//
// Stages are pure transforms: Slice Extractor (LoadSlice), Model Input
// Adapter (PrepareInput), model call through an inference.Session, Mask
// Postprocessor (ProbabilityPlane, Postprocess) and Metrics Calculator
// (CalculateMetrics). Pipeline chains them and holds no mutable state, so one
// Pipeline may serve concurrent requests when its Session allows it.
package segmentation

import (
	"context"
	"fmt"

	"github.com/troshov/PP-KT-liver/internal/inference"
)

// Options tune the pipeline. Zero fields fall back to the defaults.
type Options struct {
	InputSide        int
	Threshold        float64
	SliceIndex       int
	SliceThicknessMM float64
}

// DefaultOptions returns the reference pipeline settings.
func DefaultOptions() Options {
	return Options{
		InputSide:        DefaultInputSide,
		Threshold:        DefaultThreshold,
		SliceIndex:       0,
		SliceThicknessMM: DefaultSliceThicknessMM,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.InputSide <= 0 {
		o.InputSide = d.InputSide
	}
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.SliceThicknessMM <= 0 {
		o.SliceThicknessMM = d.SliceThicknessMM
	}
	return o
}

// Result is the output of one pipeline run.
type Result struct {
	Slice   *NormalizedSlice
	Mask    *BinaryMask
	Metrics Metrics
}

// Pipeline runs the full segmentation against a model session.
type Pipeline struct {
	session inference.Session
	opts    Options
}

// NewPipeline binds a session. The pipeline does not own the session.
func NewPipeline(session inference.Session, opts Options) *Pipeline {
	return &Pipeline{session: session, opts: opts.withDefaults()}
}

// Options returns the effective settings.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Run decodes the file at path and segments the selected slice.
func (p *Pipeline) Run(ctx context.Context, path string) (*Result, error) {
	slice, err := LoadSlice(path, p.opts.SliceIndex)
	if err != nil {
		return nil, err
	}
	return p.Segment(ctx, slice)
}

// Segment runs everything after decoding.
func (p *Pipeline) Segment(ctx context.Context, slice *NormalizedSlice) (*Result, error) {
	input := PrepareInput(slice, p.opts.InputSide)

	outputs, err := p.session.Run(ctx,
		[]string{p.session.OutputName()},
		map[string]inference.Tensor{p.session.InputName(): input},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: model returned no outputs", ErrInference)
	}
	prob, err := ProbabilityPlane(outputs[0])
	if err != nil {
		return nil, err
	}

	mask := Postprocess(prob, slice.Shape, p.opts.Threshold)
	return &Result{
		Slice:   slice,
		Mask:    mask,
		Metrics: CalculateMetrics(mask, p.opts.SliceThicknessMM),
	}, nil
}
