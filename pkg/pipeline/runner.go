package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/cache"
	"github.com/matzehuels/geoset/pkg/incfile"
	"github.com/matzehuels/geoset/pkg/observability"
	"github.com/matzehuels/geoset/pkg/snapshot"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the default cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Hash returns the cache identity of s: the SHA-256 of its canonical JSON.
func Hash(s *snapshot.Snapshot) (string, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Generate produces the set file bundle for s and reports whether it came
// from the cache.
func (r *Runner) Generate(ctx context.Context, s *snapshot.Snapshot, opts GenerateOptions) (*incfile.Bundle, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx)
	start := time.Now()

	hash, err := Hash(s)
	if err != nil {
		hooks.OnGenerateComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	key := r.Keyer.BundleKey(hash, cache.BundleKeyOpts{Prefix: opts.Prefix})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var b incfile.Bundle
			if err := json.Unmarshal(data, &b); err == nil {
				r.Logger.Debug("bundle cache hit", "hash", hash[:12])
				hooks.OnGenerateComplete(ctx, len(b.Files), time.Since(start), nil)
				return &b, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		}
	}

	b, err := incfile.Generate(s, incfile.Options{Prefix: opts.Prefix})
	if err != nil {
		hooks.OnGenerateComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}

	if data, err := json.Marshal(b); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLBundle)); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		}
	}

	duration := time.Since(start)
	r.Logger.Info("generated set files", "files", len(b.Files), "bytes", b.Size(), "duration", duration)
	hooks.OnGenerateComplete(ctx, len(b.Files), duration, nil)
	return b, false, nil
}

// Render renders s in opts.Format and reports whether it came from the
// cache. Only dot and svg output is cached; json and yaml are cheap.
func (r *Runner) Render(ctx context.Context, s *snapshot.Snapshot, opts RenderOptions) ([]byte, bool, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)
	start := time.Now()

	cacheable := opts.Format == FormatDOT || opts.Format == FormatSVG
	var key string
	if cacheable {
		hash, err := Hash(s)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
			return nil, false, err
		}
		key = r.Keyer.RenderKey(hash, cache.RenderKeyOpts{Format: opts.Format, Detailed: opts.Detailed})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), nil)
				return data, true, nil
			}
		}
	}

	out, err := RenderSnapshot(ctx, s, opts)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
		return nil, false, err
	}

	if cacheable {
		if err := r.Cache.Set(ctx, key, out, r.ttl(cache.TTLRender)); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		}
	}

	duration := time.Since(start)
	r.Logger.Debug("rendered snapshot", "format", opts.Format, "bytes", len(out), "duration", duration)
	hooks.OnRenderComplete(ctx, opts.Format, duration, nil)
	return out, false, nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
