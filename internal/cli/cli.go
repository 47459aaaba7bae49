package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/backend"
	"github.com/matzehuels/geoset/pkg/cache"
	"github.com/matzehuels/geoset/pkg/config"
	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/sink"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "geoset"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	logOut     io.Writer
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		logOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads --config, or the default config file when unset.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// editorOptions builds dashboard options from the [editor] section.
func (c *CLI) editorOptions() (dashboard.Options, error) {
	edges, err := c.Config.Editor.Policy()
	if err != nil {
		return dashboard.Options{}, err
	}
	dups, err := c.Config.Editor.Duplicates()
	if err != nil {
		return dashboard.Options{}, err
	}
	return dashboard.Options{EdgePolicy: edges, DuplicatePolicy: dups, Logger: c.Logger}, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache.NewInstrumented(ch), nil, c.Logger)
	runner.TTL = c.Config.Cache.TTL
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Export Backends
// =============================================================================

// exportFlags are the flags shared by commands that generate set files.
// Empty values fall back to the [export] config section.
type exportFlags struct {
	backend  string
	endpoint string
	sink     string
	output   string
	prefix   string
	refresh  bool
	noCache  bool
}

// newSink opens the bundle sink. kind overrides the [sink] config; an
// output that is a MongoDB URI selects the Mongo sink regardless.
func (c *CLI) newSink(ctx context.Context, kind, output string) (sink.Sink, error) {
	mopts := sink.MongoOptions{
		URI:        c.Config.Sink.MongoURI,
		Database:   c.Config.Sink.Database,
		Collection: c.Config.Sink.Collection,
	}
	if firstNonEmpty(kind, c.Config.Sink.Kind) == "mongo" && !sink.IsMongoURI(output) {
		return sink.NewMongo(ctx, mopts)
	}
	return sink.Open(ctx, output, mopts)
}

// newBackend builds the export backend selected by f and the config. The
// returned cleanup releases the runner and sink.
func (c *CLI) newBackend(ctx context.Context, f exportFlags) (backend.Backend, func(), error) {
	cfg := c.Config.Export
	kind := firstNonEmpty(f.backend, cfg.Backend)

	if kind == "http" {
		b, err := backend.NewHTTP(firstNonEmpty(f.endpoint, cfg.Endpoint), cfg.Timeout, c.Logger)
		if err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	s, err := c.newSink(ctx, f.sink, firstNonEmpty(f.output, cfg.OutputDir))
	if err != nil {
		runner.Close()
		return nil, nil, fmt.Errorf("open sink: %w", err)
	}

	local := backend.NewLocal(runner, s, c.Logger)
	local.Options = pipeline.GenerateOptions{
		Prefix:  firstNonEmpty(f.prefix, cfg.Prefix),
		Refresh: f.refresh,
	}
	cleanup := func() {
		if err := s.Close(context.Background()); err != nil {
			c.Logger.Warn("close sink", "error", err)
		}
		runner.Close()
	}
	return local, cleanup, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/geoset/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
