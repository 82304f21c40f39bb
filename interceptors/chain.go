// Package interceptors holds the gRPC server interceptors of gradebook.
package interceptors

import (
	"context"

	"google.golang.org/grpc"
)

// ChainUnary folds ics into one interceptor; ics[0] runs outermost. It
// returns nil for an empty list.
func ChainUnary(ics []grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	switch len(ics) {
	case 0:
		return nil
	case 1:
		return ics[0]
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var step func(i int) grpc.UnaryHandler
		step = func(i int) grpc.UnaryHandler {
			if i == len(ics) {
				return handler
			}
			return func(ctx context.Context, req any) (any, error) {
				return ics[i](ctx, req, info, step(i+1))
			}
		}
		return step(0)(ctx, req)
	}
}

// ChainStream is ChainUnary for stream interceptors.
func ChainStream(ics []grpc.StreamServerInterceptor) grpc.StreamServerInterceptor {
	switch len(ics) {
	case 0:
		return nil
	case 1:
		return ics[0]
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		var step func(i int) grpc.StreamHandler
		step = func(i int) grpc.StreamHandler {
			if i == len(ics) {
				return handler
			}
			return func(srv any, ss grpc.ServerStream) error {
				return ics[i](srv, ss, info, step(i+1))
			}
		}
		return step(0)(srv, ss)
	}
}

// serverStream overrides the context of a grpc.ServerStream.
type serverStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *serverStream) Context() context.Context { return s.ctx }

func withContext(ss grpc.ServerStream, ctx context.Context) grpc.ServerStream {
	if ss == nil {
		return nil
	}
	return &serverStream{ServerStream: ss, ctx: ctx}
}

// streamContext returns the context of ss, tolerating a nil stream.
func streamContext(ss grpc.ServerStream) context.Context {
	if ss == nil {
		return context.Background()
	}
	return ss.Context()
}
