package gradebook

import (
	"time"

	"github.com/Keksclan/gradebook/interceptors"
	"github.com/Keksclan/gradebook/internal/core"
	"github.com/Keksclan/gradebook/policy"
	"github.com/Keksclan/gradebook/ratelimit"
	"github.com/Keksclan/gradebook/tracing"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type custom struct {
	name  string
	unary grpc.UnaryServerInterceptor
}

// config collects the options; interceptors are built once all options are
// known so that rate limiting, timeouts and logging share one resolver.
type config struct {
	recovery    bool
	recoveryLog *zap.Logger
	requestID   bool
	tracing     *tracing.Config
	log         *zap.Logger
	rateLimit   bool
	rps         float64
	burst       int
	groups      []*policy.GroupBuilder
	timeout     time.Duration
	custom      []custom
}

func (c *config) hasGroupRateLimit() bool {
	for _, g := range c.groups {
		if g.RateLimit() != nil {
			return true
		}
	}
	return false
}

func (c *config) hasGroupTimeout() bool {
	for _, g := range c.groups {
		if g.Timeout() > 0 {
			return true
		}
	}
	return false
}

func (c *config) pipeline() *core.Pipeline {
	var resolver *policy.Resolver
	if len(c.groups) > 0 {
		resolver = policy.NewResolver(c.groups...)
	}

	p := &core.Pipeline{}
	if c.recovery {
		p.Add(PriorityRecovery, "recovery", interceptors.RecoveryUnary(c.recoveryLog), interceptors.RecoveryStream(c.recoveryLog))
	}
	if c.requestID {
		p.Add(PriorityRequestID, "request_id", interceptors.RequestIDUnary(), interceptors.RequestIDStream())
	}
	if c.tracing != nil {
		p.Add(PriorityTracing, "tracing", tracing.UnaryServerInterceptor(c.tracing), tracing.StreamServerInterceptor(c.tracing))
	}
	if c.log != nil {
		p.Add(PriorityLogging, "logging", interceptors.LoggingUnary(c.log, resolver), interceptors.LoggingStream(c.log, resolver))
	}
	if c.rateLimit || c.hasGroupRateLimit() {
		var global *ratelimit.Limiter
		if c.rateLimit {
			global = ratelimit.NewLimiter(c.rps, c.burst)
		}
		limits := ratelimit.NewSet(global, resolver)
		p.Add(PriorityRateLimit, "rate_limit", interceptors.RateLimitUnary(limits), interceptors.RateLimitStream(limits))
	}
	if c.timeout > 0 || c.hasGroupTimeout() {
		p.Add(PriorityTimeout, "timeout", interceptors.TimeoutUnary(c.timeout, resolver), interceptors.TimeoutStream(c.timeout, resolver))
	}
	for _, cu := range c.custom {
		p.Add(PriorityCustom, cu.name, cu.unary, nil)
	}
	return p
}
