// Package modelloader opens the configured inference backend.
package modelloader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/troshov/PP-KT-liver/internal/grpcclient"
	"github.com/troshov/PP-KT-liver/internal/inference"
)

// Backend names.
const (
	BackendONNX = "onnx"
	BackendGRPC = "grpc"
)

// Config selects and locates a model.
type Config struct {
	Backend           string
	ModelPath         string
	SharedLibraryPath string
	Address           string
	InputName         string
	OutputName        string
}

// Load opens the model once. Failures wrap inference.ErrModelLoad.
func Load(ctx context.Context, cfg Config, logger *zap.Logger) (inference.Session, error) {
	switch cfg.Backend {
	case BackendONNX, "":
		return inference.LoadONNX(inference.ONNXConfig{
			ModelPath:         cfg.ModelPath,
			SharedLibraryPath: cfg.SharedLibraryPath,
			InputName:         cfg.InputName,
			OutputName:        cfg.OutputName,
		}, logger)
	case BackendGRPC:
		return grpcclient.DialModelServer(ctx, cfg.Address, logger)
	default:
		return nil, fmt.Errorf("%w: unknown model backend %q", inference.ErrModelLoad, cfg.Backend)
	}
}
