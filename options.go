package gradebook

import (
	"time"

	"github.com/Keksclan/gradebook/policy"
	"github.com/Keksclan/gradebook/tracing"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Option configures a Server.
type Option func(*config)

// WithRecovery converts handler panics into codes.Internal and logs them.
func WithRecovery(log *zap.Logger) Option {
	return func(c *config) {
		c.recovery = true
		c.recoveryLog = log
	}
}

// WithRequestID gives every call a request id, taken from the x-request-id
// header when the client sends one.
func WithRequestID() Option {
	return func(c *config) { c.requestID = true }
}

// WithOpenTelemetry opens a server span per call.
func WithOpenTelemetry(cfg *tracing.Config) Option {
	return func(c *config) { c.tracing = cfg }
}

// WithLogging logs the start and the outcome of every call.
func WithLogging(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithRateLimitGlobal limits all calls not covered by a policy group rate
// limit to rps per second with bursts of burst.
func WithRateLimitGlobal(rps float64, burst int) Option {
	return func(c *config) {
		c.rateLimit = true
		c.rps, c.burst = rps, burst
	}
}

// WithPolicies sets the method groups whose rate limits and timeouts
// override the global ones. Repeated calls add groups.
func WithPolicies(groups ...*policy.GroupBuilder) Option {
	return func(c *config) { c.groups = append(c.groups, groups...) }
}

// WithTimeout bounds every call by d unless its policy group sets its own
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithUnaryInterceptor adds a custom interceptor that runs after the
// built-in ones.
func WithUnaryInterceptor(name string, i grpc.UnaryServerInterceptor) Option {
	return func(c *config) { c.custom = append(c.custom, custom{name: name, unary: i}) }
}
