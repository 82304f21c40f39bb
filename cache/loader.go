package cache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader puts a read-through path in front of a Cache. On a miss it calls the
// supplied load function once per key, however many callers are waiting for
// it, and stores a successful result in the cache.
//
// Invalidation goes through Forget and ForgetIf. They drop the cached
// entries and detach every load in flight on the Loader: such a load still
// answers the callers that joined it, but its result is not cached and later
// callers start a fresh load.
type Loader[V any] struct {
	c     *Cache[string, V]
	group singleflight.Group

	// mu orders the generation check before a Put against invalidation.
	mu  sync.Mutex
	gen uint64
}

// NewLoader wraps c.
func NewLoader[V any](c *Cache[string, V]) *Loader[V] {
	return &Loader[V]{c: c}
}

// Cache returns the wrapped cache.
func (l *Loader[V]) Cache() *Cache[string, V] { return l.c }

// GetOrLoad returns the value for key and whether it was served from the
// cache. On a miss it calls load and caches a successful result, unless the
// key was invalidated while load ran. Errors are returned to every waiting
// caller and never cached. A panic in load propagates to every waiting
// caller and leaves the key loadable.
//
// load must not call GetOrLoad for the same key on the same Loader.
func (l *Loader[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, bool, error) {
	if v, ok := l.c.Get(key); ok {
		return v, true, nil
	}

	l.mu.Lock()
	gen := l.gen
	l.mu.Unlock()

	// Calls started under an older generation are never joined.
	flight := strconv.FormatUint(gen, 10) + "\x00" + key
	res, err, _ := l.group.Do(flight, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		l.mu.Lock()
		if l.gen == gen {
			l.c.Put(key, v)
		}
		l.mu.Unlock()
		return v, nil
	})
	v, _ := res.(V)
	return v, false, err
}

// Forget removes keys from the cache and detaches the loads in flight.
func (l *Loader[V]) Forget(keys ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	for _, k := range keys {
		l.c.Remove(k)
	}
}

// ForgetIf removes every key matching pred and detaches the in-flight loads.
// It returns the number of cached entries removed.
func (l *Loader[V]) ForgetIf(pred func(string) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.c.RemoveIf(pred)
}
