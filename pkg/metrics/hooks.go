package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/matzehuels/geoset/pkg/observability"
)

var (
	_ observability.EditorHooks   = (*Registry)(nil)
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)

// Register installs r as every observability hook.
func (r *Registry) Register() {
	observability.SetEditorHooks(r)
	observability.SetPipelineHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Registry) OnClick(outcome string) {
	r.ClicksTotal.WithLabelValues(outcome).Inc()
}

func (r *Registry) OnRebuild(labels, links int, duration time.Duration) {
	r.RebuildDuration.Observe(duration.Seconds())
	r.SnapshotLabels.Set(float64(labels))
	r.SnapshotLinks.Set(float64(links))
}

func (r *Registry) OnGenerateStart(context.Context) {}

func (r *Registry) OnGenerateComplete(_ context.Context, files int, duration time.Duration, err error) {
	r.GenerateTotal.WithLabelValues(status(err)).Inc()
	r.GenerateDuration.Observe(duration.Seconds())
	if err == nil {
		r.GeneratedFiles.Add(float64(files))
	}
}

func (r *Registry) OnRenderStart(context.Context, string) {}

func (r *Registry) OnRenderComplete(_ context.Context, format string, duration time.Duration, err error) {
	r.RenderTotal.WithLabelValues(format, status(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(duration.Seconds())
}

func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheHitsTotal.WithLabelValues(keyType).Inc()
}

func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Add(float64(size))
}

func (r *Registry) OnRequest(context.Context, string, string, string) {}

func (r *Registry) OnResponse(_ context.Context, method, host, _ string, statusCode int, duration time.Duration) {
	r.BackendRequestsTotal.WithLabelValues(method, host, strconv.Itoa(statusCode)).Inc()
	r.BackendRequestDuration.WithLabelValues(method, host).Observe(duration.Seconds())
}

func (r *Registry) OnError(_ context.Context, method, host, _ string, _ error) {
	r.BackendErrorsTotal.WithLabelValues(method, host).Inc()
}

// RecordHTTPRequest records an incoming API request.
func (r *Registry) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetSessions records the number of live dashboard sessions.
func (r *Registry) SetSessions(n int) {
	r.SessionsActive.Set(float64(n))
}

// SessionEvicted counts one session removed by expiry or eviction.
func (r *Registry) SessionEvicted() {
	r.SessionsEvicted.Inc()
}
