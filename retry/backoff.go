// Package retry retries client calls that fail with transient gRPC codes,
// waiting with exponential backoff and jitter between attempts.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// backoff returns the delay after the zero-based attempt, capped at
// cfg.MaxDelay before jitter is applied.
func backoff(cfg Config, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if limit := float64(cfg.MaxDelay); limit > 0 && delay > limit {
		delay = limit
	}
	if cfg.Jitter > 0 {
		delay += delay * cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(max(delay, 0))
}
