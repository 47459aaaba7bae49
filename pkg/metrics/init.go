package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEditorMetrics() {
	r.ClicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_editor_clicks_total",
			Help: "Label clicks by selection outcome",
		},
		[]string{"outcome"},
	)

	r.RebuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoset_editor_rebuild_duration_seconds",
			Help:    "Snapshot rebuild latency in seconds",
			Buckets: []float64{.00001, .0001, .001, .01, .1},
		},
	)

	r.SnapshotLabels = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "geoset_editor_snapshot_labels",
			Help: "Labels in the most recently rebuilt snapshot",
		},
	)

	r.SnapshotLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "geoset_editor_snapshot_links",
			Help: "Visible connections in the most recently rebuilt snapshot",
		},
	)

	r.SessionsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "geoset_sessions_active",
			Help: "Current number of dashboard sessions",
		},
	)

	r.SessionsEvicted = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "geoset_sessions_evicted_total",
			Help: "Sessions removed by expiry or capacity eviction",
		},
	)
}

func (r *Registry) initPipelineMetrics() {
	r.GenerateTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_generate_total",
			Help: "Set file generation runs",
		},
		[]string{"status"},
	)

	r.GenerateDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "geoset_generate_duration_seconds",
			Help:    "Set file generation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.GeneratedFiles = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "geoset_generated_files_total",
			Help: "Set files produced",
		},
	)

	r.RenderTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_render_total",
			Help: "Diagram renders by format",
		},
		[]string{"format", "status"},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoset_render_duration_seconds",
			Help:    "Diagram render latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheHitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_cache_hits_total",
			Help: "Cache hits by key type",
		},
		[]string{"key_type"},
	)

	r.CacheMissesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_cache_misses_total",
			Help: "Cache misses by key type",
		},
		[]string{"key_type"},
	)

	r.CacheWriteBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_cache_write_bytes_total",
			Help: "Bytes written to the cache by key type",
		},
		[]string{"key_type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.BackendRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_backend_requests_total",
			Help: "Requests to the remote export backend",
		},
		[]string{"method", "host", "status"},
	)

	r.BackendRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoset_backend_request_duration_seconds",
			Help:    "Remote export backend latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "host"},
	)

	r.BackendErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_backend_errors_total",
			Help: "Network failures calling the remote export backend",
		},
		[]string{"method", "host"},
	)

	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoset_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geoset_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}
