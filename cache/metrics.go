package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// collectors holds the cache metric vectors shared by every instance. Each
// instance gets its own children, labelled by cache name.
type collectors struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	evictions   *prometheus.CounterVec
	expirations *prometheus.CounterVec
	entries     *prometheus.GaugeVec
}

type instanceMetrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	entries     prometheus.Gauge
}

var (
	collectorsOnce     sync.Once
	collectorsInstance *collectors
)

func getCollectors() *collectors {
	collectorsOnce.Do(func() {
		collectorsInstance = newCollectors()
	})
	return collectorsInstance
}

func newCollectors() *collectors {
	labels := []string{"cache"}
	return &collectors{
		hits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradebook",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits.",
		}, labels),
		misses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradebook",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses, including lazily expired entries.",
		}, labels),
		evictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradebook",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total number of entries evicted to stay within capacity.",
		}, labels),
		expirations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gradebook",
			Subsystem: "cache",
			Name:      "expirations_total",
			Help:      "Total number of entries removed after their TTL elapsed.",
		}, labels),
		entries: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "gradebook",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of entries currently held by the cache.",
		}, labels),
	}
}

func metricsFor(name string) *instanceMetrics {
	m := getCollectors()
	return &instanceMetrics{
		hits:        m.hits.WithLabelValues(name),
		misses:      m.misses.WithLabelValues(name),
		evictions:   m.evictions.WithLabelValues(name),
		expirations: m.expirations.WithLabelValues(name),
		entries:     m.entries.WithLabelValues(name),
	}
}
