package interceptors

import (
	"context"
	"time"

	"github.com/Keksclan/gradebook/contextx"
	"github.com/Keksclan/gradebook/policy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func callFields(ctx context.Context, r *policy.Resolver, method string) []zap.Field {
	fields := []zap.Field{zap.String("method", method)}
	if id := contextx.RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if m, ok := r.Resolve(method); ok {
		fields = append(fields, zap.String("policy_group", m.Group))
	}
	return fields
}

// logResult logs the end of a call. Client errors are logged at warn level,
// server errors at error level.
func logResult(log *zap.Logger, fields []zap.Field, start time.Time, err error) {
	fields = append(fields, zap.Duration("duration", time.Since(start)))
	if err == nil {
		log.Info("executed", fields...)
		return
	}
	code := status.Code(err)
	fields = append(fields, zap.String("code", code.String()), zap.Error(err))
	lvl := zapcore.WarnLevel
	switch code {
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		lvl = zapcore.ErrorLevel
	}
	log.Log(lvl, "failed", fields...)
}

// LoggingUnary logs "executing" before and "executed" or "failed" after each
// call. r, which may be nil, adds the policy group of the method.
func LoggingUnary(log *zap.Logger, r *policy.Resolver) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		fields := callFields(ctx, r, info.FullMethod)
		log.Debug("executing", fields...)
		start := time.Now()
		resp, err := handler(ctx, req)
		logResult(log, fields, start, err)
		return resp, err
	}
}

// LoggingStream is LoggingUnary for streams.
func LoggingStream(log *zap.Logger, r *policy.Resolver) grpc.StreamServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		fields := callFields(streamContext(ss), r, info.FullMethod)
		log.Debug("executing", fields...)
		start := time.Now()
		err := handler(srv, ss)
		logResult(log, fields, start, err)
		return err
	}
}
