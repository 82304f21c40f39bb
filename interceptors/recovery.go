package interceptors

import (
	"context"
	"runtime/debug"

	"github.com/Keksclan/gradebook/contextx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errPanic = status.Error(codes.Internal, "internal server error")

func logPanic(ctx context.Context, log *zap.Logger, method string, r any) {
	log.Error("panic recovered",
		zap.String("method", method),
		zap.String("request_id", contextx.RequestID(ctx)),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()),
	)
}

// RecoveryUnary turns a handler panic into codes.Internal and logs it. A nil
// log discards the report.
func RecoveryUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(ctx, log, info.FullMethod, r)
				resp, err = nil, errPanic
			}
		}()
		return handler(ctx, req)
	}
}

// RecoveryStream turns a handler panic into codes.Internal and logs it.
func RecoveryStream(log *zap.Logger) grpc.StreamServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logPanic(streamContext(ss), log, info.FullMethod, r)
				err = errPanic
			}
		}()
		return handler(srv, ss)
	}
}
