package policy

import "strings"

// match returns whether r matches method and how many characters matched.
func (r rule) match(method string) (bool, int) {
	switch r.kind {
	case kindExact:
		return method == r.pattern, len(r.pattern)
	case kindPrefix:
		return strings.HasPrefix(method, r.pattern), len(r.pattern)
	case kindRegex:
		loc := r.re.FindStringIndex(method)
		if loc == nil {
			return false, 0
		}
		return true, loc[1] - loc[0]
	}
	return false, 0
}

// best returns the strongest rule of g matching method.
func (g *GroupBuilder) best(method string) (kind matchKind, length int, ok bool) {
	for _, r := range g.rules {
		m, n := r.match(method)
		if !m {
			continue
		}
		if !ok || r.kind < kind || (r.kind == kind && n > length) {
			kind, length, ok = r.kind, n, true
		}
	}
	return kind, length, ok
}
