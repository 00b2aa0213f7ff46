package observability

import (
	"time"

	"github.com/mbittar/finsights-engine-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the insights engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	computeDuration   *prometheus.HistogramVec
	computationsTotal *prometheus.CounterVec
	detectorHits      *prometheus.CounterVec
	enhancedFallbacks *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	externalErrors    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		computeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finsights_compute_duration_seconds",
				Help:    "Duration of analytics computations by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		computationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsights_computations_total",
				Help: "Total analytics computations by operation and status.",
			},
			[]string{"operation", "status"},
		),
		detectorHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsights_detector_hits_total",
				Help: "Total suggestions produced per detector type.",
			},
			[]string{"detector"},
		),
		enhancedFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsights_enhanced_fallback_total",
				Help: "Total fallbacks from enhanced data to local computation.",
			},
			[]string{"component"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsights_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsights_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsights_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
	}
}

// RecordComputeDuration records the duration of an analytics computation.
func (m *Metrics) RecordComputeDuration(operation string, d time.Duration) {
	m.computeDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrComputation increments the computation counter with a status label.
func (m *Metrics) IncrComputation(operation, status string) {
	m.computationsTotal.WithLabelValues(operation, status).Inc()
}

// IncrDetectorHit increments the per-detector suggestion counter.
func (m *Metrics) IncrDetectorHit(detector string) {
	m.detectorHits.WithLabelValues(detector).Inc()
}

// IncrEnhancedFallback increments the enhanced-to-local fallback counter.
func (m *Metrics) IncrEnhancedFallback(component string) {
	m.enhancedFallbacks.WithLabelValues(component).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// GetEngineSnapshot returns a snapshot of engine metrics suitable for the
// GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	// Prometheus counters expose cumulative values.
	var total, errored float64
	for _, op := range []string{"forecast", "health_score", "suggestions"} {
		total += getCounterValue(m.computationsTotal, op, "success")
		errored += getCounterValue(m.computationsTotal, op, "error")
	}
	total += errored

	cacheHits := getCounterValue(m.cacheHits, "results")
	cacheMisses := getCounterValue(m.cacheMisses, "results")

	var fallbacks float64
	for _, comp := range []string{"forecaster", "scorer", "suggestions"} {
		fallbacks += getCounterValue(m.enhancedFallbacks, comp)
	}

	errorRate := float64(0)
	if total > 0 {
		errorRate = errored / total
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.EngineMetrics{
		TotalComputations: int64(total),
		ErrorRate:         errorRate,
		CacheHitRate:      cacheHitRate,
		EnhancedFallbacks: int64(fallbacks),
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
