package interceptors

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/Keksclan/gradebook/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// requestID attaches a request id to ctx: the one already in ctx, the one
// the client sent in the x-request-id header, or a fresh random one.
func requestID(ctx context.Context) (context.Context, string) {
	if id := contextx.RequestID(ctx); id != "" {
		return ctx, id
	}
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(contextx.RequestIDHeader); len(v) > 0 {
			id = v[0]
		}
	}
	if id == "" {
		id = newRequestID()
	}
	return contextx.WithRequestID(ctx, id), id
}

// RequestIDUnary ensures every call carries a request id and echoes it in
// the response header.
func RequestIDUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, id := requestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(contextx.RequestIDHeader, id))
		return handler(ctx, req)
	}
}

// RequestIDStream is RequestIDUnary for streams.
func RequestIDStream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if ss == nil {
			return handler(srv, ss)
		}
		ctx, id := requestID(ss.Context())
		_ = ss.SetHeader(metadata.Pairs(contextx.RequestIDHeader, id))
		return handler(srv, withContext(ss, ctx))
	}
}
