// Package client is a typed gRPC client for the gradebook services.
//
// Every call retries transient failures with [retry.Do] and passes through a
// shared [breaker.Breaker]. While the breaker is open calls fail fast with
// [breaker.ErrOpen]. The request id stored in the call context is forwarded
// as x-request-id metadata.
package client

import (
	"context"
	"time"

	"github.com/Keksclan/gradebook/api"
	"github.com/Keksclan/gradebook/breaker"
	"github.com/Keksclan/gradebook/contextx"
	"github.com/Keksclan/gradebook/retry"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	retry   retry.Config
	breaker breaker.Config
	log     *zap.Logger
}

// WithRetry replaces [retry.DefaultConfig].
func WithRetry(cfg retry.Config) Option {
	return func(o *options) { o.retry = cfg }
}

// WithBreaker sets the breaker thresholds.
func WithBreaker(cfg breaker.Config) Option {
	return func(o *options) { o.breaker = cfg }
}

// WithLogger logs retries and breaker transitions to log.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// Client groups the per-service clients. It is safe for concurrent use.
type Client struct {
	Students   *Students
	Groups     *Groups
	Subjects   *Subjects
	Marks      *Marks
	Enrollment *Enrollment
	Logs       *Logs

	conn    grpc.ClientConnInterface
	closer  func() error
	retry   retry.Config
	breaker *breaker.Breaker
	log     *zap.Logger
}

// New wraps an existing connection. Close does not close conn.
func New(conn grpc.ClientConnInterface, opts ...Option) *Client {
	o := options{retry: retry.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	c := &Client{conn: conn, retry: o.retry, log: o.log}

	bcfg := o.breaker
	userHook := bcfg.OnStateChange
	bcfg.OnStateChange = func(from, to breaker.State) {
		c.log.Warn("circuit breaker state changed",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		if userHook != nil {
			userHook(from, to)
		}
	}
	c.breaker = breaker.New(bcfg)

	c.Students = &Students{c}
	c.Groups = &Groups{c}
	c.Subjects = &Subjects{c}
	c.Marks = &Marks{c}
	c.Enrollment = &Enrollment{c}
	c.Logs = &Logs{c}
	return c
}

// Dial connects to target without transport security unless dialOpts says
// otherwise.
func Dial(target string, opts []Option, dialOpts ...grpc.DialOption) (*Client, error) {
	dialOpts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, dialOpts...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	c := New(conn, opts...)
	c.closer = conn.Close
	return c, nil
}

// Close closes the connection opened by Dial.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Breaker exposes the breaker state.
func (c *Client) Breaker() breaker.State { return c.breaker.State() }

// serverFailure reports whether err says the server is unhealthy. Client
// mistakes such as NotFound or InvalidArgument leave the breaker alone.
func serverFailure(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Unknown, codes.DataLoss:
		return true
	}
	return false
}

func call[Resp any](ctx context.Context, c *Client, service, method string, req any) (*Resp, error) {
	full := api.FullMethod(service, method)
	if id := contextx.RequestID(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, contextx.RequestIDHeader, id)
	}

	cfg := c.retry
	hook := cfg.OnRetry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.log.Debug("retrying",
			zap.String("method", full),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if hook != nil {
			hook(attempt, delay, err)
		}
	}

	return retry.Do(ctx, cfg, func(ctx context.Context) (*Resp, error) {
		resp := new(Resp)
		err := c.breaker.Do(func() error {
			return c.conn.Invoke(ctx, full, req, resp)
		}, serverFailure)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
}

func exec(ctx context.Context, c *Client, service, method string, req any) error {
	_, err := call[api.Empty](ctx, c, service, method, req)
	return err
}
