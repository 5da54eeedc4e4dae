// Package metrics provides Prometheus metrics instrumentation for the
// emulator daemon.
//
// It exposes operational metrics about surrogate loading and prediction
// performance, cache effectiveness and error tracking. All metrics are
// exposed via the /metrics HTTP endpoint for Prometheus scraping.
//
// Metrics exposed:
//   - subgridemu_surrogate_load_seconds: Histogram of artifact load+decode duration
//   - subgridemu_predict_seconds: Histogram of prediction duration by statistic
//   - subgridemu_cache_hits_total: Counter of prediction cache hits
//   - subgridemu_cache_misses_total: Counter of prediction cache misses
//   - subgridemu_loaded_surrogates: Gauge of surrogates resident in memory
//   - subgridemu_errors_total: Counter of errors by component and reason
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the emulator daemon.
type Metrics struct {
	SurrogateLoadSeconds prometheus.Histogram
	PredictSeconds       *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	LoadedSurrogates     prometheus.Gauge
	ErrorsTotal          *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SurrogateLoadSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "subgridemu_surrogate_load_seconds",
			Help:    "Time spent fetching and decoding a surrogate artifact",
			Buckets: prometheus.DefBuckets,
		}),

		PredictSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subgridemu_predict_seconds",
			Help:    "Time spent producing a prediction",
			Buckets: prometheus.DefBuckets,
		}, []string{"statistic"}),

		CacheHitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "subgridemu_cache_hits_total",
			Help: "Total number of predictions served from the cache",
		}),

		CacheMissesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "subgridemu_cache_misses_total",
			Help: "Total number of predictions computed on a cache miss",
		}),

		LoadedSurrogates: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "subgridemu_loaded_surrogates",
			Help: "Number of surrogates currently resident in memory",
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "subgridemu_errors_total",
			Help: "Total number of errors by component and reason",
		}, []string{"component", "reason"}),
	}
}

// RecordLoad records the time spent loading a surrogate.
func (m *Metrics) RecordLoad(seconds float64) {
	m.SurrogateLoadSeconds.Observe(seconds)
}

// RecordPredict records the time spent producing a prediction.
func (m *Metrics) RecordPredict(statistic string, seconds float64) {
	m.PredictSeconds.WithLabelValues(statistic).Observe(seconds)
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

// SetLoadedSurrogates sets the loaded surrogate gauge.
func (m *Metrics) SetLoadedSurrogates(n int) {
	m.LoadedSurrogates.Set(float64(n))
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
