// Package metrics exports kgview activity to Prometheus.
//
// A [Registry] implements the hook interfaces of package observability, so
// installing it is a matter of
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	http.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/kgview/pkg/observability"
)

const namespace = "kgview"

// Registry holds all metrics for the application.
type Registry struct {
	// Pipeline metrics
	FetchesTotal     *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	GraphNodes       prometheus.Histogram
	TransformsTotal  prometheus.Counter
	TransformLatency prometheus.Histogram
	ExportsTotal     *prometheus.CounterVec
	ExportBytes      *prometheus.HistogramVec

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWriteBytes    *prometheus.HistogramVec

	// HTTP client metrics
	UpstreamRequestsTotal *prometheus.CounterVec
	UpstreamDuration      *prometheus.HistogramVec
	UpstreamErrorsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every kgview metric registered.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.FetchesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "graph_fetches_total",
		Help:      "Knowledge graph fetches by outcome",
	}, []string{"status"})
	r.FetchDuration = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "graph_fetch_duration_seconds",
		Help:      "Time spent fetching knowledge graphs",
		Buckets:   prometheus.DefBuckets,
	})
	r.GraphNodes = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "graph_nodes",
		Help:      "Node count of transformed graphs",
		Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
	})
	r.TransformsTotal = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transforms_total",
		Help:      "Graphs transformed for rendering",
	})
	r.TransformLatency = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transform_duration_seconds",
		Help:      "Time spent transforming graphs",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	r.ExportsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Render graph exports by format and outcome",
	}, []string{"format", "status"})
	r.ExportBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_bytes",
		Help:      "Size of exported artifacts",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
	}, []string{"format"})

	r.CacheRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups by key type and result",
	}, []string{"key_type", "result"})
	r.CacheWriteBytes = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cache_write_bytes",
		Help:      "Size of cache writes",
		Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"key_type"})

	r.UpstreamRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Backend API responses by host and status code",
	}, []string{"host", "code"})
	r.UpstreamDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Backend API latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host"})
	r.UpstreamErrorsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_errors_total",
		Help:      "Backend API transport failures",
	}, []string{"host"})

	return r
}

// Install registers r as the process-wide observability hooks.
func (r *Registry) Install() {
	observability.Install(r, r, r)
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnFetchStart implements observability.PipelineHooks.
func (r *Registry) OnFetchStart(context.Context, string) {}

// OnFetchComplete implements observability.PipelineHooks.
func (r *Registry) OnFetchComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	r.FetchesTotal.WithLabelValues(status(err)).Inc()
	r.FetchDuration.Observe(d.Seconds())
	if err == nil {
		r.GraphNodes.Observe(float64(nodeCount))
	}
}

// OnTransformComplete implements observability.PipelineHooks.
func (r *Registry) OnTransformComplete(_ context.Context, _, _ int, d time.Duration) {
	r.TransformsTotal.Inc()
	r.TransformLatency.Observe(d.Seconds())
}

// OnExportStart implements observability.PipelineHooks.
func (r *Registry) OnExportStart(context.Context, string) {}

// OnExportComplete implements observability.PipelineHooks.
func (r *Registry) OnExportComplete(_ context.Context, format string, size int, _ time.Duration, err error) {
	r.ExportsTotal.WithLabelValues(format, status(err)).Inc()
	if err == nil {
		r.ExportBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// OnCacheHit implements observability.CacheHooks.
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// OnRequest implements observability.HTTPHooks.
func (r *Registry) OnRequest(context.Context, string, string, string) {}

// OnResponse implements observability.HTTPHooks.
func (r *Registry) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	r.UpstreamRequestsTotal.WithLabelValues(host, http.StatusText(code)).Inc()
	r.UpstreamDuration.WithLabelValues(host).Observe(d.Seconds())
}

// OnError implements observability.HTTPHooks.
func (r *Registry) OnError(_ context.Context, _, host, _ string, _ error) {
	r.UpstreamErrorsTotal.WithLabelValues(host).Inc()
}

var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
