package policy

import "sync"

// Match is the outcome of resolving a method.
type Match struct {
	Group  string
	Policy Policy
}

// Resolver picks the group for a full method name. Results are memoized per
// method, so groups must not be modified after NewResolver.
type Resolver struct {
	groups []*GroupBuilder
	memo   sync.Map // full method -> resolution
}

type resolution struct {
	m  Match
	ok bool
}

// NewResolver returns a Resolver over groups.
func NewResolver(groups ...*GroupBuilder) *Resolver {
	return &Resolver{groups: groups}
}

// Resolve returns the group matching method. Exact rules beat prefix rules,
// which beat regex rules; within a kind the longer match wins and remaining
// ties go to the group registered first. ok is false when nothing matches or
// r is nil.
func (r *Resolver) Resolve(method string) (Match, bool) {
	if r == nil {
		return Match{}, false
	}
	if v, hit := r.memo.Load(method); hit {
		res := v.(resolution)
		return res.m, res.ok
	}

	var (
		res      resolution
		bestKind matchKind
		bestLen  int
	)
	for _, g := range r.groups {
		kind, n, ok := g.best(method)
		if !ok {
			continue
		}
		if !res.ok || kind < bestKind || (kind == bestKind && n > bestLen) {
			bestKind, bestLen = kind, n
			res = resolution{m: Match{Group: g.name, Policy: g.policy}, ok: true}
		}
	}
	r.memo.Store(method, res)
	return res.m, res.ok
}
