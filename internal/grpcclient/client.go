package grpcclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/troshov/PP-KT-liver/internal/inference"
	"github.com/troshov/PP-KT-liver/internal/logging"
	proto "github.com/troshov/PP-KT-liver/proto"
)

// ServiceName is the gRPC service a remote model server must expose.
const ServiceName = "liverseg.inference.v1.ModelService"

// DialModelServer returns a ready-to-use inference session backed by a
// remote model server.
func DialModelServer(ctx context.Context, addr string, logger *zap.Logger, opts ...grpc.DialOption) (*RemoteSession, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	}, opts...)
	conn, err := grpc.DialContext(dialCtx, addr, opts...)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_model_server", "", err)
		logger.Error("failed to dial model server", zap.Error(wrapped), zap.String("addr", addr))
		return nil, fmt.Errorf("%w: %w", inference.ErrModelLoad, wrapped)
	}

	session, err := NewRemoteSession(ctx, conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	session.addr = addr
	return session, nil
}

// RemoteSession implements inference.Session over a gRPC connection.
type RemoteSession struct {
	conn     *grpc.ClientConn
	client   proto.ModelServiceClient
	logger   *zap.Logger
	addr     string
	describe *proto.DescribeResponse
}

// NewRemoteSession checks the server health and reads the model signature.
// The session takes ownership of conn.
func NewRemoteSession(ctx context.Context, conn *grpc.ClientConn, logger *zap.Logger) (*RemoteSession, error) {
	logger = logger.Named("remote_session")

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	switch {
	case status.Code(err) == codes.Unimplemented:
		logger.Warn("model server does not implement health checks")
	case err != nil:
		return nil, fmt.Errorf("%w: health check: %w", inference.ErrModelLoad, err)
	case resp.GetStatus() != healthpb.HealthCheckResponse_SERVING:
		return nil, fmt.Errorf("%w: model server status %s", inference.ErrModelLoad, resp.GetStatus())
	}

	client := proto.NewModelServiceClient(conn)
	desc, err := client.Describe(ctx, &proto.DescribeRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: describe model: %w", inference.ErrModelLoad, err)
	}
	if desc.GetInputName() == "" || desc.GetOutputName() == "" {
		return nil, fmt.Errorf("%w: model server returned empty tensor names", inference.ErrModelLoad)
	}

	logger.Info("remote model ready",
		zap.String("model", desc.GetModel()),
		zap.String("input", desc.GetInputName()),
		zap.String("output", desc.GetOutputName()),
	)
	return &RemoteSession{conn: conn, client: client, logger: logger, describe: desc}, nil
}

func (r *RemoteSession) InputName() string  { return r.describe.GetInputName() }
func (r *RemoteSession) OutputName() string { return r.describe.GetOutputName() }

func (r *RemoteSession) Describe() string {
	if r.addr == "" {
		return fmt.Sprintf("remote %s", r.describe.GetModel())
	}
	return fmt.Sprintf("remote %s at %s", r.describe.GetModel(), r.addr)
}

// Run sends the inputs to the model server. Safe for concurrent use.
func (r *RemoteSession) Run(ctx context.Context, outputs []string, inputs map[string]inference.Tensor) ([]inference.Tensor, error) {
	req := &proto.RunRequest{Outputs: outputs, Inputs: make([]*proto.Tensor, 0, len(inputs))}
	for name, t := range inputs {
		req.Inputs = append(req.Inputs, &proto.Tensor{Name: name, Shape: t.Shape, Data: t.Data})
	}

	resp, err := r.client.Run(ctx, req)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.run_model", "", err)
		r.logger.Error("model server call failed", zap.Error(wrapped))
		return nil, wrapped
	}
	if len(resp.GetOutputs()) != len(outputs) {
		return nil, fmt.Errorf("model server returned %d outputs, want %d", len(resp.GetOutputs()), len(outputs))
	}

	result := make([]inference.Tensor, len(resp.GetOutputs()))
	for i, m := range resp.GetOutputs() {
		t, err := inference.NewTensor(m.GetShape(), m.GetData())
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", outputs[i], err)
		}
		result[i] = t
	}
	return result, nil
}

// Close closes the underlying connection.
func (r *RemoteSession) Close() error {
	return r.conn.Close()
}
