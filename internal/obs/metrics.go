package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/icu-sec/icu/internal/rules"
)

// Metrics holds the Prometheus instrumentation for the scan pipeline.
type Metrics struct {
	scansByRisk  *prometheus.CounterVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	scanDuration prometheus.Histogram
}

// NewMetrics registers ICU's counters and histograms against reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests, or
// prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scansByRisk: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "icu",
			Name:      "scans_total",
			Help:      "Number of files scanned, by resulting risk level.",
		}, []string{"risk_level"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "icu",
			Name:      "hash_cache_hits_total",
			Help:      "Number of hash-cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "icu",
			Name:      "hash_cache_misses_total",
			Help:      "Number of hash-cache misses.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "icu",
			Name:      "scan_duration_seconds",
			Help:      "Per-file scan duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.scansByRisk, m.cacheHits, m.cacheMisses, m.scanDuration)
	return m
}

// ObserveScan increments the per-risk-level scan counter.
func (m *Metrics) ObserveScan(risk rules.RiskLevel) {
	if m == nil {
		return
	}
	m.scansByRisk.WithLabelValues(string(risk)).Inc()
}

// CacheHit increments the hash-cache hit counter.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss increments the hash-cache miss counter.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

// ObserveDuration records a scan's wall-clock duration in seconds.
func (m *Metrics) ObserveDuration(seconds float64) {
	if m == nil {
		return
	}
	m.scanDuration.Observe(seconds)
}
