package contextx

import "testing"

func TestRequestID(t *testing.T) {
	if got := RequestID(t.Context()); got != "" {
		t.Fatalf("RequestID on empty context = %q", got)
	}
	ctx := WithRequestID(t.Context(), "req-7")
	if got := RequestID(ctx); got != "req-7" {
		t.Fatalf("RequestID = %q, want req-7", got)
	}
	ctx = WithRequestID(ctx, "req-8")
	if got := RequestID(ctx); got != "req-8" {
		t.Fatalf("RequestID after override = %q, want req-8", got)
	}
}
