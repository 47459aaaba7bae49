// Package metrics implements the observability hooks with Prometheus
// collectors.
//
// A [Registry] owns its own prometheus.Registry so tests and multiple
// servers never collide on global registration. Register it once at startup:
//
//	m := metrics.NewRegistry()
//	observability.SetEditorHooks(m)
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	router.Handle("/metrics", m.Handler())
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all geoset metrics.
type Registry struct {
	registry *prometheus.Registry

	// Editor
	ClicksTotal     *prometheus.CounterVec
	RebuildDuration prometheus.Histogram
	SnapshotLabels  prometheus.Gauge
	SnapshotLinks   prometheus.Gauge
	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter

	// Pipeline
	GenerateTotal    *prometheus.CounterVec
	GenerateDuration prometheus.Histogram
	GeneratedFiles   prometheus.Counter
	RenderTotal      *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec

	// Cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheWriteBytes  *prometheus.CounterVec

	// Outgoing backend calls
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	BackendErrorsTotal     *prometheus.CounterVec

	// Incoming API requests
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initEditorMetrics()
	r.initPipelineMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
