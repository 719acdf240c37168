// Package metrics exposes Prometheus instrumentation for the cache,
// RPC server, and orchestrator. Unlike a package-level
// prometheus.MustRegister(...) in an init() function, every collector
// here is registered on a Recorder-owned *prometheus.Registry handed
// in by the caller: no package-level mutable state, consistent with
// this module's constructor-injection discipline throughout.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/prefixcache"
)

// Recorder owns every collector this service publishes.
type Recorder struct {
	registry *prometheus.Registry

	cacheRequests *prometheus.CounterVec
	cacheBuckets  prometheus.Gauge
	cacheEntries  prometheus.Gauge
	cacheHitRate  prometheus.Gauge

	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec

	suggestionSource   *prometheus.CounterVec
	suggestionDuration prometheus.Histogram

	orchestratorFallback *prometheus.CounterVec
	orchestratorDuration prometheus.Histogram
}

// New builds a Recorder and registers all its collectors on registry.
func New(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: registry,
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_cache_requests_total",
			Help: "Cache get() calls by outcome (hit/miss).",
		}, []string{"outcome"}),
		cacheBuckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_cache_buckets",
			Help: "Current number of live prefix buckets.",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_cache_entries",
			Help: "Current total entries across all buckets.",
		}),
		cacheHitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "predictor_cache_hit_rate",
			Help: "Cache hit rate since the last Clear().",
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_rpc_requests_total",
			Help: "RPC calls served, by method and result code.",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predictor_rpc_duration_seconds",
			Help:    "RPC server handler duration by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		suggestionSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_suggestion_source_total",
			Help: "get_suggestions results by source (cache/llm/fallback/error).",
		}, []string{"source"}),
		suggestionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "predictor_suggestion_duration_seconds",
			Help:    "get_suggestions handler duration.",
			Buckets: []float64{.0005, .001, .002, .005, .01, .02, .05, .1},
		}),
		orchestratorFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_orchestrator_fallback_total",
			Help: "Plugin-side offline fallbacks, by reason.",
		}, []string{"reason"}),
		orchestratorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "predictor_orchestrator_call_duration_seconds",
			Help:    "End-to-end orchestrator call duration, including any fallback.",
			Buckets: []float64{.001, .005, .01, .015, .02, .05, .1},
		}),
	}

	registry.MustRegister(
		r.cacheRequests, r.cacheBuckets, r.cacheEntries, r.cacheHitRate,
		r.rpcRequests, r.rpcDuration,
		r.suggestionSource, r.suggestionDuration,
		r.orchestratorFallback, r.orchestratorDuration,
	)
	return r
}

// RecordSuggestionSource increments the get_suggestions outcome
// counter for source (cache/llm/fallback/error/cancelled).
func (r *Recorder) RecordSuggestionSource(source string) {
	r.suggestionSource.WithLabelValues(source).Inc()
}

// suggestionTimer wraps a prometheus.Timer so callers don't need to
// import the prometheus package directly.
type suggestionTimer struct{ t *prometheus.Timer }

func (st *suggestionTimer) ObserveDuration() { st.t.ObserveDuration() }

// StartSuggestionTimer starts timing a get_suggestions call.
func (r *Recorder) StartSuggestionTimer() *suggestionTimer {
	return &suggestionTimer{t: prometheus.NewTimer(r.suggestionDuration)}
}

// RecordRPC records one served RPC call's method, result code, and
// duration.
func (r *Recorder) RecordRPC(method, code string, d time.Duration) {
	r.rpcRequests.WithLabelValues(method, code).Inc()
	r.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordOrchestratorCall records one plugin-side orchestrator call,
// noting whether it ended in a fallback and why.
func (r *Recorder) RecordOrchestratorCall(d time.Duration, fallbackReason string) {
	r.orchestratorDuration.Observe(d.Seconds())
	if fallbackReason != "" {
		r.orchestratorFallback.WithLabelValues(fallbackReason).Inc()
	}
}

// RecordCacheGet tallies one Cache.Get outcome.
func (r *Recorder) RecordCacheGet(hit bool) {
	if hit {
		r.cacheRequests.WithLabelValues("hit").Inc()
		return
	}
	r.cacheRequests.WithLabelValues("miss").Inc()
}

// SetCacheStats republishes a prefixcache.Stats snapshot as gauges.
// Intended to be called periodically (e.g. alongside the janitor
// sweep) rather than on every cache operation.
func (r *Recorder) SetCacheStats(s prefixcache.Stats) {
	r.cacheBuckets.Set(float64(s.BucketCount))
	r.cacheEntries.Set(float64(s.EntryCount))
	r.cacheHitRate.Set(s.HitRate)
}
