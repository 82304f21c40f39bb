package interceptors

import (
	"context"

	"github.com/Keksclan/gradebook/ratelimit"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errRateLimited = status.Error(codes.ResourceExhausted, "rate limit exceeded")

// RateLimitUnary rejects calls with codes.ResourceExhausted once the bucket
// selected by limits for the method is empty.
func RateLimitUnary(limits *ratelimit.Set) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !limits.Allow(info.FullMethod) {
			return nil, errRateLimited
		}
		return handler(ctx, req)
	}
}

// RateLimitStream is RateLimitUnary for streams.
func RateLimitStream(limits *ratelimit.Set) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !limits.Allow(info.FullMethod) {
			return errRateLimited
		}
		return handler(srv, ss)
	}
}
