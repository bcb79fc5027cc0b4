package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// ONNXConfig locates an ONNX model and the ONNX Runtime shared library.
type ONNXConfig struct {
	ModelPath         string
	SharedLibraryPath string
	// InputName and OutputName override the model's first input and output.
	InputName  string
	OutputName string
}

// ONNXSession runs a model in-process through ONNX Runtime.
type ONNXSession struct {
	session   *ort.DynamicAdvancedSession
	input     ort.InputOutputInfo
	output    ort.InputOutputInfo
	modelPath string
	logger    *zap.Logger
}

// LoadONNX initializes the runtime environment and opens the model. The
// returned session owns the environment and releases it on Close.
func LoadONNX(cfg ONNXConfig, logger *zap.Logger) (*ONNXSession, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: model file: %w", ErrModelLoad, err)
	}
	if cfg.SharedLibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: onnxruntime environment: %w", ErrModelLoad, err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read model signature: %w", ErrModelLoad, err)
	}
	input, err := pickInfo(inputs, cfg.InputName, "input")
	if err != nil {
		return nil, err
	}
	output, err := pickInfo(outputs, cfg.OutputName, "output")
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, []string{input.Name}, []string{output.Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create session: %w", ErrModelLoad, err)
	}

	logger = logger.Named("onnx_session")
	logger.Info("model loaded",
		zap.String("model", cfg.ModelPath),
		zap.String("input", input.Name),
		zap.Int64s("input_shape", input.Dimensions),
		zap.String("output", output.Name),
		zap.Int64s("output_shape", output.Dimensions),
	)
	return &ONNXSession{
		session:   session,
		input:     input,
		output:    output,
		modelPath: cfg.ModelPath,
		logger:    logger,
	}, nil
}

func pickInfo(infos []ort.InputOutputInfo, name, kind string) (ort.InputOutputInfo, error) {
	if len(infos) == 0 {
		return ort.InputOutputInfo{}, fmt.Errorf("%w: model has no %s", ErrModelLoad, kind)
	}
	if name == "" {
		return infos[0], nil
	}
	for _, info := range infos {
		if info.Name == name {
			return info, nil
		}
	}
	return ort.InputOutputInfo{}, fmt.Errorf("%w: model has no %s named %q", ErrModelLoad, kind, name)
}

func (s *ONNXSession) InputName() string  { return s.input.Name }
func (s *ONNXSession) OutputName() string { return s.output.Name }

func (s *ONNXSession) Describe() string {
	return fmt.Sprintf("ONNX %s", filepath.Base(s.modelPath))
}

// Run executes the model on a single input tensor.
func (s *ONNXSession) Run(ctx context.Context, outputs []string, inputs map[string]Tensor) ([]Tensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(outputs) != 1 || outputs[0] != s.output.Name {
		return nil, fmt.Errorf("unsupported outputs %v, model exposes %q", outputs, s.output.Name)
	}
	in, ok := inputs[s.input.Name]
	if !ok {
		return nil, fmt.Errorf("missing input %q", s.input.Name)
	}

	inTensor, err := ort.NewTensor(ort.NewShape(in.Shape...), in.Data)
	if err != nil {
		return nil, fmt.Errorf("input tensor: %w", err)
	}
	defer inTensor.Destroy()

	outShape := resolveDims(s.output.Dimensions, in.Shape)
	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(outShape...))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer outTensor.Destroy()

	if err := s.session.Run([]ort.Value{inTensor}, []ort.Value{outTensor}); err != nil {
		return nil, fmt.Errorf("onnxruntime run: %w", err)
	}

	data := make([]float32, len(outTensor.GetData()))
	copy(data, outTensor.GetData())
	return []Tensor{{Shape: outShape, Data: data}}, nil
}

// resolveDims fills dynamic (non-positive) output dimensions from the
// matching input dimension, or 1 when there is none.
func resolveDims(dims ort.Shape, input []int64) []int64 {
	out := make([]int64, len(dims))
	for i, d := range dims {
		switch {
		case d > 0:
			out[i] = d
		case i < len(input):
			out[i] = input[i]
		default:
			out[i] = 1
		}
	}
	return out
}

// Close releases the session and the runtime environment.
func (s *ONNXSession) Close() error {
	return errors.Join(s.session.Destroy(), ort.DestroyEnvironment())
}
