// Package metrics exports cache statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/smartcache/pkg/cache"
)

// StatsSource reports a stats snapshot per instance. *cache.Registry satisfies it.
type StatsSource interface {
	Stats() map[string]cache.Stats
}

// Collector reads instance stats at scrape time.
type Collector struct {
	source StatsSource

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	evictions   *prometheus.Desc
	expirations *prometheus.Desc
	hitRate     *prometheus.Desc
	sizeBytes   *prometheus.Desc
	entries     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector for source. Register it with a prometheus.Registerer.
func NewCollector(source StatsSource) *Collector {
	labels := []string{"instance"}
	return &Collector{
		source:      source,
		hits:        prometheus.NewDesc("smartcache_hits_total", "Total cache hits", labels, nil),
		misses:      prometheus.NewDesc("smartcache_misses_total", "Total cache misses", labels, nil),
		evictions:   prometheus.NewDesc("smartcache_evictions_total", "Total entries evicted to stay within the size budget", labels, nil),
		expirations: prometheus.NewDesc("smartcache_expirations_total", "Total entries removed after their TTL elapsed", labels, nil),
		hitRate:     prometheus.NewDesc("smartcache_hit_rate", "Hits divided by lookups", labels, nil),
		sizeBytes:   prometheus.NewDesc("smartcache_size_bytes", "Sum of entry sizes", labels, nil),
		entries:     prometheus.NewDesc("smartcache_entries", "Number of live entries", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expirations
	ch <- c.hitRate
	ch <- c.sizeBytes
	ch <- c.entries
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, s := range c.source.Stats() {
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions), name)
		ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations), name)
		ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, s.HitRate, name)
		ch <- prometheus.MustNewConstMetric(c.sizeBytes, prometheus.GaugeValue, float64(s.TotalSize), name)
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.EntryCount), name)
	}
}

// Metrics holds the metrics that are observed rather than collected.
type Metrics struct {
	ProducerDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the producer histogram and a Collector for source.
func NewMetrics(reg prometheus.Registerer, source StatsSource) *Metrics {
	producerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartcache_producer_duration_seconds",
		Help:    "Time spent computing values on memoized cache misses",
		Buckets: prometheus.DefBuckets,
	}, []string{"instance"})

	reg.MustRegister(producerDuration, NewCollector(source))

	return &Metrics{
		ProducerDuration: producerDuration,
	}
}

// ObserveProducer returns a callback for cache.WithTiming that records into
// the producer histogram under instance.
func (m *Metrics) ObserveProducer(instance string) func(time.Duration) {
	obs := m.ProducerDuration.WithLabelValues(instance)
	return func(d time.Duration) {
		obs.Observe(d.Seconds())
	}
}
