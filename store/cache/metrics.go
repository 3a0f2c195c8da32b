package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics mirrors cache activity into Prometheus. A nil *cacheMetrics
// is valid and records nothing.
type cacheMetrics struct {
	hits            prometheus.Counter
	misses          prometheus.Counter
	sets            prometheus.Counter
	evictions       prometheus.Counter
	expirations     prometheus.Counter
	refreshes       prometheus.Counter
	refreshFailures prometheus.Counter

	size prometheus.Gauge
}

func newCacheMetrics(registerer prometheus.Registerer, component string) (*cacheMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "eventdesk",
			Subsystem:   "cache",
			Name:        name,
			Help:        help,
			ConstLabels: prometheus.Labels{"component": component},
		})
	}

	m := &cacheMetrics{
		hits:            counter("hits_total", "Total number of cache hits"),
		misses:          counter("misses_total", "Total number of cache misses"),
		sets:            counter("sets_total", "Total number of cache set operations"),
		evictions:       counter("evictions_total", "Total number of capacity evictions"),
		expirations:     counter("expirations_total", "Total number of entries dropped after their TTL"),
		refreshes:       counter("refreshes_total", "Total number of background refreshes started"),
		refreshFailures: counter("refresh_failures_total", "Total number of failed background refreshes"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "eventdesk",
			Subsystem:   "cache",
			Name:        "size",
			Help:        "Current number of entries in cache",
			ConstLabels: prometheus.Labels{"component": component},
		}),
	}

	for _, c := range []prometheus.Collector{
		m.hits, m.misses, m.sets, m.evictions, m.expirations, m.refreshes, m.refreshFailures, m.size,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) recordSet() {
	if m != nil {
		m.sets.Inc()
	}
}

func (m *cacheMetrics) recordEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *cacheMetrics) recordExpiration(n int) {
	if m != nil && n > 0 {
		m.expirations.Add(float64(n))
	}
}

func (m *cacheMetrics) recordRefresh() {
	if m != nil {
		m.refreshes.Inc()
	}
}

func (m *cacheMetrics) recordRefreshFailure() {
	if m != nil {
		m.refreshFailures.Inc()
	}
}

func (m *cacheMetrics) updateSize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
