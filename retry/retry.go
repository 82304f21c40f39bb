package retry

import (
	"context"
	"slices"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Config controls [Do].
type Config struct {
	// MaxAttempts counts the first call. Values below 2 disable retries.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; it doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay.
	MaxDelay time.Duration

	// Jitter spreads the delay by up to this fraction in either direction.
	Jitter float64

	// RetryCodes lists the retryable gRPC status codes. Errors without a
	// status, breaker rejections included, are never retried.
	RetryCodes []codes.Code

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig retries Unavailable and ResourceExhausted three times with
// a 50ms base delay.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    time.Second,
		Jitter:      0.2,
		RetryCodes:  []codes.Code{codes.Unavailable, codes.ResourceExhausted},
	}
}

// Retryable reports whether err carries one of cfg.RetryCodes.
func (cfg Config) Retryable(err error) bool {
	st, ok := status.FromError(err)
	return ok && err != nil && slices.Contains(cfg.RetryCodes, st.Code())
}

// Do calls fn until it succeeds, returns a non-retryable error or
// cfg.MaxAttempts is reached. A done ctx ends the wait with ctx.Err().
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(cfg.MaxAttempts, 1)

	for i := range attempts {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if i == attempts-1 || !cfg.Retryable(err) {
			return zero, err
		}

		delay := backoff(cfg, i)
		if cfg.OnRetry != nil {
			cfg.OnRetry(i+1, delay, err)
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, nil
}
