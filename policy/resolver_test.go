package policy

import (
	"testing"
	"time"
)

func TestServiceMatchesEveryMethod(t *testing.T) {
	r := NewResolver(Service("gradebook.Marks").Policy(Policy{Timeout: time.Second}))

	for _, method := range []string{"/gradebook.Marks/List", "/gradebook.Marks/AverageByStudent"} {
		m, ok := r.Resolve(method)
		if !ok {
			t.Fatalf("%s: expected a match", method)
		}
		if m.Group != "gradebook.Marks" || m.Policy.Timeout != time.Second {
			t.Fatalf("%s: got %+v", method, m)
		}
	}
	if _, ok := r.Resolve("/gradebook.MarksExtra/List"); ok {
		t.Fatal("service prefix must stop at the slash")
	}
}

func TestExactBeatsPrefixBeatsRegex(t *testing.T) {
	r := NewResolver(
		Group("any").Regex(`^/gradebook\.`),
		Service("gradebook.Students"),
		Group("writes").Exact("/gradebook.Students/Create"),
	)

	cases := map[string]string{
		"/gradebook.Students/Create": "writes",
		"/gradebook.Students/List":   "gradebook.Students",
		"/gradebook.Groups/List":     "any",
	}
	for method, want := range cases {
		m, ok := r.Resolve(method)
		if !ok || m.Group != want {
			t.Fatalf("Resolve(%s) = %+v, %v; want group %q", method, m, ok, want)
		}
	}
}

func TestLongerPrefixWins(t *testing.T) {
	r := NewResolver(
		Group("short").Prefix("/gradebook."),
		Group("long").Prefix("/gradebook.Subjects/"),
	)
	m, _ := r.Resolve("/gradebook.Subjects/Exists")
	if m.Group != "long" {
		t.Fatalf("got %q, want long", m.Group)
	}
}

func TestFirstRegisteredWinsTie(t *testing.T) {
	r := NewResolver(
		Group("first").Exact("/gradebook.Logs/Get").Policy(Policy{Timeout: time.Second}),
		Group("second").Exact("/gradebook.Logs/Get").Policy(Policy{Timeout: 2 * time.Second}),
	)
	m, _ := r.Resolve("/gradebook.Logs/Get")
	if m.Group != "first" || m.Policy.Timeout != time.Second {
		t.Fatalf("got %+v", m)
	}
}

func TestNoMatchAndNilResolver(t *testing.T) {
	r := NewResolver(Service("gradebook.Groups"))
	if _, ok := r.Resolve("/other.Service/Get"); ok {
		t.Fatal("expected no match")
	}
	// Memoized misses stay misses.
	if _, ok := r.Resolve("/other.Service/Get"); ok {
		t.Fatal("expected no match on second lookup")
	}

	var nilResolver *Resolver
	if _, ok := nilResolver.Resolve("/gradebook.Groups/List"); ok {
		t.Fatal("nil resolver must not match")
	}
}

func TestRateLimitRulePerSecond(t *testing.T) {
	if got := (RateLimitRule{Rate: 120, Window: time.Minute}).PerSecond(); got != 2 {
		t.Fatalf("PerSecond = %v, want 2", got)
	}
	if got := (RateLimitRule{Rate: 5}).PerSecond(); got != 5 {
		t.Fatalf("PerSecond without window = %v, want 5", got)
	}
}
