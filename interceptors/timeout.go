package interceptors

import (
	"context"
	"time"

	"github.com/Keksclan/gradebook/policy"
	"google.golang.org/grpc"
)

// timeoutFor returns the policy group's timeout for method when set, def
// otherwise.
func timeoutFor(r *policy.Resolver, method string, def time.Duration) time.Duration {
	if m, ok := r.Resolve(method); ok && m.Policy.Timeout > 0 {
		return m.Policy.Timeout
	}
	return def
}

// TimeoutUnary bounds every call by a deadline. A zero timeout leaves the
// call unbounded; an earlier client deadline is kept.
func TimeoutUnary(def time.Duration, r *policy.Resolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		d := timeoutFor(r, info.FullMethod, def)
		if d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// TimeoutStream is TimeoutUnary for streams.
func TimeoutStream(def time.Duration, r *policy.Resolver) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		d := timeoutFor(r, info.FullMethod, def)
		if d <= 0 || ss == nil {
			return handler(srv, ss)
		}
		ctx, cancel := context.WithTimeout(ss.Context(), d)
		defer cancel()
		return handler(srv, withContext(ss, ctx))
	}
}
