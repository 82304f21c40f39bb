package cache

import (
	"context"
	"time"
)

// sweepLoop periodically reclaims expired entries until ctx is cancelled.
// It never touches entries that are still live, so it only changes what a
// later Get or Size would have reclaimed anyway.
func (c *Cache[K, V]) sweepLoop(ctx context.Context, every time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep runs one reclamation pass and returns the number of removed entries.
func (c *Cache[K, V]) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expireLocked(c.now())
}
