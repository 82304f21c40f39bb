// Package cache provides the bounded, expiring in-process cache that every
// gradebook service keeps in front of its repositories.
//
// A Cache holds at most MaxSize entries. Entries expire TTL after they were
// last written, are reclaimed lazily on Get and proactively by a background
// sweeper, and are evicted in strict FIFO order of insertion/refresh when a
// Put pushes the cache past its bound.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultTTL is used when Config.TTL is not positive.
	DefaultTTL = time.Minute
	// DefaultMaxSize is used when Config.MaxSize is not positive.
	DefaultMaxSize = 100

	minSweepInterval = 5 * time.Millisecond
	maxSweepInterval = time.Second
)

// Config controls a single cache instance. TTL and MaxSize are fixed for the
// lifetime of the instance.
type Config struct {
	// Name labels the instance in metrics and logs.
	Name string
	// TTL is how long an entry stays valid after its last Put.
	TTL time.Duration
	// MaxSize is the maximum number of live entries.
	MaxSize int
	// SweepInterval is the period of the background sweep. Zero derives it
	// from TTL (half of it, clamped to [5ms, 1s]).
	SweepInterval time.Duration
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	Len         int
}

// Cache is a concurrency-safe FIFO cache with a fixed TTL.
//
// The zero value is not usable; construct instances with New. A Cache owns one
// background goroutine which is stopped by Shutdown.
type Cache[K comparable, V any] struct {
	name    string
	ttl     time.Duration
	maxSize int

	mu    sync.Mutex
	items map[K]*list.Element
	order *list.List // Front = oldest insert/refresh, Back = newest

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64

	metrics *instanceMetrics
	now     func() time.Time // for testing; defaults to time.Now

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	writtenAt time.Time
	expiresAt time.Time
}

// New constructs a cache and starts its background sweeper.
func New[K comparable, V any](cfg Config) *Cache[K, V] {
	c := newCache[K, V](cfg, time.Now)
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.sweepLoop(ctx, sweepInterval(cfg))
	return c
}

// newCache builds a cache without starting the sweeper.
func newCache[K comparable, V any](cfg Config, now func() time.Time) *Cache[K, V] {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	name := cfg.Name
	if name == "" {
		name = "default"
	}
	return &Cache[K, V]{
		name:    name,
		ttl:     ttl,
		maxSize: maxSize,
		items:   make(map[K]*list.Element),
		order:   list.New(),
		metrics: metricsFor(name),
		now:     now,
		cancel:  func() {},
	}
}

func sweepInterval(cfg Config) time.Duration {
	if cfg.SweepInterval > 0 {
		return cfg.SweepInterval
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return min(max(ttl/2, minSweepInterval), maxSweepInterval)
}

// Name returns the label the cache was configured with.
func (c *Cache[K, V]) Name() string { return c.name }

// TTL returns the fixed time-to-live of entries.
func (c *Cache[K, V]) TTL() time.Duration { return c.ttl }

// MaxSize returns the fixed capacity.
func (c *Cache[K, V]) MaxSize() int { return c.maxSize }

// Put inserts or refreshes key. A refreshed key gets a new expiry and moves
// to the most-recent end of the eviction order.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
	c.items[key] = c.order.PushBack(&entry[K, V]{
		key:       key,
		value:     value,
		writtenAt: now,
		expiresAt: now.Add(c.ttl),
	})

	if len(c.items) > c.maxSize {
		c.expireLocked(now)
	}
	for len(c.items) > c.maxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.removeElementLocked(oldest)
		c.evictions.Add(1)
		c.metrics.evictions.Inc()
	}
	c.metrics.entries.Set(float64(len(c.items)))
}

// Get returns the value stored under key. An expired entry is removed and
// reported as absent; Get never refreshes an entry.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.miss()
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if !c.now().Before(e.expiresAt) {
		c.removeElementLocked(el)
		c.expirations.Add(1)
		c.metrics.expirations.Inc()
		c.metrics.entries.Set(float64(len(c.items)))
		c.miss()
		return zero, false
	}
	c.hits.Add(1)
	c.metrics.hits.Inc()
	return e.value, true
}

// Remove deletes key. Removing an absent key is a no-op.
func (c *Cache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElementLocked(el)
		c.metrics.entries.Set(float64(len(c.items)))
	}
}

// RemoveIf deletes every entry whose key satisfies pred and returns how many
// were removed. pred runs with the cache lock held and must not call back
// into the cache.
func (c *Cache[K, V]) RemoveIf(pred func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if pred(el.Value.(*entry[K, V]).key) {
			c.removeElementLocked(el)
			removed++
		}
		el = next
	}
	if removed > 0 {
		c.metrics.entries.Set(float64(len(c.items)))
	}
	return removed
}

// Size returns the number of entries that are present and unexpired at the
// moment of the call. Expired entries found on the way are reclaimed.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expireLocked(c.now())
	return len(c.items)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	n := len(c.items)
	c.mu.Unlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Expirations: c.expirations.Load(),
		Len:         n,
	}
}

// Shutdown stops the background sweeper and waits for an in-flight sweep to
// finish. Entries are kept and all other methods continue to work. Shutdown
// is safe to call multiple times and from any goroutine.
func (c *Cache[K, V]) Shutdown() {
	c.stopOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
	})
}

func (c *Cache[K, V]) miss() {
	c.misses.Add(1)
	c.metrics.misses.Inc()
}

// expireLocked removes expired entries starting from the oldest one. With a
// fixed TTL the insertion/refresh order is also expiry order, so the walk
// stops at the first live entry. Must be called with c.mu held.
func (c *Cache[K, V]) expireLocked(now time.Time) int {
	removed := 0
	for el := c.order.Front(); el != nil; el = c.order.Front() {
		if now.Before(el.Value.(*entry[K, V]).expiresAt) {
			break
		}
		c.removeElementLocked(el)
		removed++
	}
	if removed > 0 {
		c.expirations.Add(int64(removed))
		c.metrics.expirations.Add(float64(removed))
		c.metrics.entries.Set(float64(len(c.items)))
	}
	return removed
}

// removeElementLocked drops el from both the index and the order list.
// Must be called with c.mu held.
func (c *Cache[K, V]) removeElementLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}
