package grpcclient

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/troshov/PP-KT-liver/internal/inference"
	proto "github.com/troshov/PP-KT-liver/proto"
)

// fakeModel thresholds its input at zero: positive values score 0.9.
type fakeModel struct {
	proto.UnimplementedModelServiceServer
	lastRequest *proto.RunRequest
	runErr      error
}

func (f *fakeModel) Describe(context.Context, *proto.DescribeRequest) (*proto.DescribeResponse, error) {
	return &proto.DescribeResponse{Model: "liver_model", InputName: "input_1", OutputName: "sigmoid"}, nil
}

func (f *fakeModel) Run(_ context.Context, req *proto.RunRequest) (*proto.RunResponse, error) {
	f.lastRequest = req
	if f.runErr != nil {
		return nil, f.runErr
	}
	var in *proto.Tensor
	for _, t := range req.GetInputs() {
		if t.GetName() == "input_1" {
			in = t
		}
	}
	if in == nil {
		return nil, errors.New("missing input_1")
	}
	out := make([]float32, len(in.GetData()))
	for i, v := range in.GetData() {
		out[i] = 0.1
		if v > 0 {
			out[i] = 0.9
		}
	}
	return &proto.RunResponse{Outputs: []*proto.Tensor{{Name: "sigmoid", Shape: in.GetShape(), Data: out}}}, nil
}

func startServer(t *testing.T, model *fakeModel, status healthpb.HealthCheckResponse_ServingStatus) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	proto.RegisterModelServiceServer(srv, model)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, status)
	healthpb.RegisterHealthServer(srv, hs)
	go srv.Serve(lis) //nolint:errcheck
	t.Cleanup(srv.Stop)
	return lis
}

func dialBuf(t *testing.T, lis *bufconn.Listener) (*RemoteSession, error) {
	t.Helper()
	return DialModelServer(context.Background(), "bufnet", zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
}

func TestRemoteSessionRun(t *testing.T) {
	model := &fakeModel{}
	session, err := dialBuf(t, startServer(t, model, healthpb.HealthCheckResponse_SERVING))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer session.Close()

	if session.InputName() != "input_1" || session.OutputName() != "sigmoid" {
		t.Fatalf("unexpected tensor names %q -> %q", session.InputName(), session.OutputName())
	}

	input := inference.Tensor{Shape: []int64{1, 2, 2, 1}, Data: []float32{-1, 2, 0, 3}}
	outputs, err := session.Run(context.Background(), []string{"sigmoid"}, map[string]inference.Tensor{"input_1": input})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(outputs))
	}
	want := []float32{0.1, 0.9, 0.1, 0.9}
	for i, v := range want {
		if outputs[0].Data[i] != v {
			t.Fatalf("output %d: expected %v, got %v", i, v, outputs[0].Data[i])
		}
	}
	if got := model.lastRequest.GetOutputs(); len(got) != 1 || got[0] != "sigmoid" {
		t.Fatalf("unexpected requested outputs %v", got)
	}
	if got := model.lastRequest.GetInputs()[0].GetShape(); len(got) != 4 || got[3] != 1 {
		t.Fatalf("unexpected input shape %v", got)
	}
}

func TestModelServiceDescriptor(t *testing.T) {
	services := proto.File_model_service_proto.Services()
	if services.Len() != 1 {
		t.Fatalf("expected 1 service, got %d", services.Len())
	}
	if got := services.Get(0).FullName(); got != protoreflect.FullName(ServiceName) {
		t.Fatalf("expected service %s, got %s", ServiceName, got)
	}

	fields := (&proto.Tensor{}).ProtoReflect().Descriptor().Fields()
	if kind := fields.ByName("data").Kind(); kind != protoreflect.FloatKind {
		t.Fatalf("expected float data, got %s", kind)
	}
	if !fields.ByName("shape").IsPacked() {
		t.Fatal("expected packed shape")
	}
}

func TestRemoteSessionRunError(t *testing.T) {
	model := &fakeModel{runErr: errors.New("out of memory")}
	session, err := dialBuf(t, startServer(t, model, healthpb.HealthCheckResponse_SERVING))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer session.Close()

	_, err = session.Run(context.Background(), []string{"sigmoid"}, map[string]inference.Tensor{
		"input_1": {Shape: []int64{1, 1}, Data: []float32{1}},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDialModelServerNotServing(t *testing.T) {
	_, err := dialBuf(t, startServer(t, &fakeModel{}, healthpb.HealthCheckResponse_NOT_SERVING))
	if !errors.Is(err, inference.ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
}
