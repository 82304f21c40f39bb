// Package ratelimit gates gRPC requests with token buckets from
// golang.org/x/time/rate: one global bucket plus one bucket per policy
// group.
package ratelimit

import (
	"sync"

	"github.com/Keksclan/gradebook/policy"
	"golang.org/x/time/rate"
)

// Limiter is a single token bucket.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter allows rps requests per second with bursts of up to burst.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// FromRule builds a limiter from a policy rule.
func FromRule(r policy.RateLimitRule) *Limiter {
	return NewLimiter(r.PerSecond(), r.Rate)
}

// Allow consumes one token if available.
func (l *Limiter) Allow() bool { return l.lim.Allow() }

// Set hands out the limiter for a method: the limiter of its policy group
// when that group has a rate limit, the global limiter otherwise. Group
// limiters are created on first use.
type Set struct {
	global   *Limiter
	resolver *policy.Resolver

	mu     sync.Mutex
	groups map[string]*Limiter
}

// NewSet returns a Set. global may be nil, in which case methods without a
// group limit are not limited.
func NewSet(global *Limiter, resolver *policy.Resolver) *Set {
	return &Set{global: global, resolver: resolver, groups: make(map[string]*Limiter)}
}

// Allow reports whether a call to method may proceed.
func (s *Set) Allow(method string) bool {
	l := s.limiterFor(method)
	return l == nil || l.Allow()
}

func (s *Set) limiterFor(method string) *Limiter {
	m, ok := s.resolver.Resolve(method)
	if !ok || m.Policy.RateLimit == nil {
		return s.global
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.groups[m.Group]
	if !ok {
		l = FromRule(*m.Policy.RateLimit)
		s.groups[m.Group] = l
	}
	return l
}
