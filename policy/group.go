// Package policy maps gRPC methods to named groups that carry a rate limit
// and a timeout.
package policy

import (
	"regexp"
	"time"
)

// RateLimitRule allows Rate requests per Window, with a burst of Rate.
type RateLimitRule struct {
	Rate   int
	Window time.Duration
}

// PerSecond returns the sustained rate of r.
func (r RateLimitRule) PerSecond() float64 {
	if r.Window <= 0 {
		return float64(r.Rate)
	}
	return float64(r.Rate) / r.Window.Seconds()
}

// Policy applies to every method of a group. Zero fields mean "inherit the
// server default".
type Policy struct {
	RateLimit *RateLimitRule
	Timeout   time.Duration
}

type matchKind int

// Lower kinds win.
const (
	kindExact matchKind = iota
	kindPrefix
	kindRegex
)

type rule struct {
	kind    matchKind
	pattern string
	re      *regexp.Regexp
}

// GroupBuilder collects the rules and the policy of one method group.
type GroupBuilder struct {
	name   string
	rules  []rule
	policy Policy
}

// Group starts a method group.
func Group(name string) *GroupBuilder {
	return &GroupBuilder{name: name}
}

// Service starts a group named after a gRPC service that matches every
// method of it, e.g. Service("gradebook.Marks").
func Service(name string) *GroupBuilder {
	return Group(name).Prefix("/" + name + "/")
}

// Exact matches one full method name.
func (g *GroupBuilder) Exact(method string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindExact, pattern: method})
	return g
}

// Prefix matches every full method name starting with prefix.
func (g *GroupBuilder) Prefix(prefix string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindPrefix, pattern: prefix})
	return g
}

// Regex matches full method names against expr. It panics on an invalid
// expression.
func (g *GroupBuilder) Regex(expr string) *GroupBuilder {
	g.rules = append(g.rules, rule{kind: kindRegex, pattern: expr, re: regexp.MustCompile(expr)})
	return g
}

// Policy sets the policy of the group.
func (g *GroupBuilder) Policy(p Policy) *GroupBuilder {
	g.policy = p
	return g
}

// Name returns the group name.
func (g *GroupBuilder) Name() string { return g.name }

// RateLimit returns the rate limit of the group's policy, or nil.
func (g *GroupBuilder) RateLimit() *RateLimitRule { return g.policy.RateLimit }

// Timeout returns the timeout of the group's policy.
func (g *GroupBuilder) Timeout() time.Duration { return g.policy.Timeout }
