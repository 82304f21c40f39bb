package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoader_LoadsOnceThenServesFromCache(t *testing.T) {
	c := New[string, string](Config{Name: t.Name(), TTL: time.Minute})
	defer c.Shutdown()
	l := NewLoader(c)

	var calls atomic.Int32
	load := func(_ context.Context) (string, error) {
		calls.Add(1)
		return "loaded", nil
	}

	for i := range 3 {
		v, hit, err := l.GetOrLoad(t.Context(), "k", load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if v != "loaded" {
			t.Fatalf("got %q, want %q", v, "loaded")
		}
		if hit != (i > 0) {
			t.Fatalf("call %d reported hit=%v", i, hit)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("load called %d times, want 1", n)
	}
	if _, ok := l.Cache().Get("k"); !ok {
		t.Fatal("expected loaded value to be cached")
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	c := New[string, int](Config{Name: t.Name(), TTL: time.Minute})
	defer c.Shutdown()
	l := NewLoader(c)

	errBoom := errors.New("boom")
	_, _, err := l.GetOrLoad(t.Context(), "k", func(context.Context) (int, error) {
		return 0, errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("a failed load must not populate the cache")
	}

	v, _, err := l.GetOrLoad(t.Context(), "k", func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("GetOrLoad = %d, %v; want 42, nil", v, err)
	}
}

func TestLoader_DeduplicatesConcurrentLoads(t *testing.T) {
	c := New[string, string](Config{Name: t.Name(), TTL: time.Minute})
	defer c.Shutdown()
	l := NewLoader(c)

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(_ context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 10)
	hits := make([]bool, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, hit, err := l.GetOrLoad(t.Context(), "shared", load)
			if err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
			results[i], hits[i] = v, hit
		}()
	}

	// Let the goroutines pile up on the in-flight load before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("load called %d times, want 1", n)
	}
	for i, v := range results {
		if v != "v" {
			t.Fatalf("results[%d] = %q, want %q", i, v, "v")
		}
		if hits[i] {
			t.Fatalf("results[%d] waited on a load but was reported as a cache hit", i)
		}
	}
}

func TestLoader_PanickingLoadLeavesKeyLoadable(t *testing.T) {
	c := New[string, int](Config{Name: t.Name(), TTL: time.Minute})
	defer c.Shutdown()
	l := NewLoader(c)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic in load was swallowed")
			}
		}()
		_, _, _ = l.GetOrLoad(t.Context(), "k", func(context.Context) (int, error) {
			panic("repository exploded")
		})
	}()

	done := make(chan int, 1)
	go func() {
		v, _, _ := l.GetOrLoad(t.Context(), "k", func(context.Context) (int, error) { return 7, nil })
		done <- v
	}()
	select {
	case v := <-done:
		if v != 7 {
			t.Fatalf("GetOrLoad after panic = %d, want 7", v)
		}
	case <-time.After(time.Second):
		t.Fatal("GetOrLoad blocked after an earlier load panicked")
	}
}

func TestLoader_ForgetDetachesInFlightLoad(t *testing.T) {
	c := New[string, int](Config{Name: t.Name(), TTL: time.Minute})
	defer c.Shutdown()
	l := NewLoader(c)

	started := make(chan struct{})
	release := make(chan struct{})
	stale := make(chan int, 1)
	go func() {
		v, _, _ := l.GetOrLoad(t.Context(), "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		stale <- v
	}()

	<-started
	l.Forget("k")

	// A read after the invalidation must not join the old load.
	v, _, err := l.GetOrLoad(t.Context(), "k", func(context.Context) (int, error) { return 2, nil })
	if err != nil || v != 2 {
		t.Fatalf("read after Forget = %d, %v; want 2", v, err)
	}

	close(release)
	if v := <-stale; v != 1 {
		t.Fatalf("detached load answered its caller with %d, want 1", v)
	}
	if got, ok := c.Get("k"); !ok || got != 2 {
		t.Fatalf("cache holds %d, %v after the detached load finished; want 2", got, ok)
	}
}

func TestLoader_ForgetIfSkipsPutOfRunningLoad(t *testing.T) {
	c := New[string, int](Config{Name: t.Name(), TTL: time.Minute})
	defer c.Shutdown()
	l := NewLoader(c)
	c.Put("avg-student-2", 5)

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_, _, _ = l.GetOrLoad(t.Context(), "avg-student-1", func(context.Context) (int, error) {
			close(started)
			<-release
			return 3, nil
		})
	}()

	<-started
	if n := l.ForgetIf(func(k string) bool { return len(k) > 4 && k[:4] == "avg-" }); n != 1 {
		t.Fatalf("ForgetIf removed %d entries, want 1", n)
	}
	close(release)
	<-finished

	if _, ok := c.Get("avg-student-1"); ok {
		t.Fatal("load that overlapped ForgetIf was cached")
	}
	if c.Size() != 0 {
		t.Fatalf("Size = %d, want 0", c.Size())
	}
}
