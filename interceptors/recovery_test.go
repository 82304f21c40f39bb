package interceptors

import (
	"context"
	"testing"

	"github.com/Keksclan/gradebook/contextx"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRecoveryUnaryLogsPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ic := RecoveryUnary(zap.New(core))

	ctx := contextx.WithRequestID(t.Context(), "req-1")
	info := &grpc.UnaryServerInfo{FullMethod: "/gradebook.Students/Get"}
	resp, err := ic(ctx, nil, info, func(context.Context, any) (any, error) {
		panic("boom")
	})
	if resp != nil {
		t.Fatalf("expected nil response, got %v", resp)
	}
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want Internal", status.Code(err))
	}

	entries := logs.FilterMessage("panic recovered").All()
	if len(entries) != 1 {
		t.Fatalf("expected one panic log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["method"] != "/gradebook.Students/Get" || fields["request_id"] != "req-1" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["panic"] != "boom" {
		t.Fatalf("panic field = %v", fields["panic"])
	}
}

func TestRecoveryUnaryNonStringPanic(t *testing.T) {
	ic := RecoveryUnary(nil)
	_, err := ic(t.Context(), nil, &grpc.UnaryServerInfo{}, func(context.Context, any) (any, error) {
		panic(42)
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want Internal", status.Code(err))
	}
}

func TestRecoveryUnaryPassthrough(t *testing.T) {
	ic := RecoveryUnary(nil)
	resp, err := ic(t.Context(), "hello", &grpc.UnaryServerInfo{}, func(_ context.Context, req any) (any, error) {
		return req, nil
	})
	if err != nil || resp != "hello" {
		t.Fatalf("got %v, %v", resp, err)
	}
}

func TestRecoveryStreamPanic(t *testing.T) {
	ic := RecoveryStream(nil)
	err := ic(nil, nil, &grpc.StreamServerInfo{}, func(any, grpc.ServerStream) error {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("code = %v, want Internal", status.Code(err))
	}
}
