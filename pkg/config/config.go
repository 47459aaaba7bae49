// Package config loads geoset settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/geoset/config.toml. Missing files and
// missing keys fall back to [Default]. Values are checked with struct tags
// after decoding, so a typo in a policy name fails at startup instead of at
// the first click.
package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/graph"
	"github.com/matzehuels/geoset/pkg/label"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Config holds geoset configuration.
type Config struct {
	Editor EditorConfig `toml:"editor"`
	Export ExportConfig `toml:"export"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Sink   SinkConfig   `toml:"sink"`
}

// EditorConfig controls how the dashboard treats labels and edges.
type EditorConfig struct {
	EdgePolicy      string `toml:"edge_policy" validate:"oneof=latent prune"`
	DuplicatePolicy string `toml:"duplicate_policy" validate:"oneof=dedupe reject"`
}

// ExportConfig selects the code-generation backend.
type ExportConfig struct {
	Backend   string        `toml:"backend" validate:"oneof=local http"`
	Endpoint  string        `toml:"endpoint" validate:"required_if=Backend http,omitempty,url"`
	OutputDir string        `toml:"output_dir" validate:"required"`
	Prefix    string        `toml:"prefix" validate:"excludesall=/\\"`
	Timeout   time.Duration `toml:"timeout" validate:"gt=0"`
}

// CacheConfig selects where rendered diagrams and bundles are cached.
type CacheConfig struct {
	Backend  string        `toml:"backend" validate:"oneof=file redis none"`
	RedisURL string        `toml:"redis_url" validate:"required_if=Backend redis"`
	TTL      time.Duration `toml:"ttl" validate:"gte=0"`
}

// ServerConfig controls `geoset serve`.
type ServerConfig struct {
	Addr        string        `toml:"addr" validate:"required"`
	MaxSessions int           `toml:"max_sessions" validate:"min=1"`
	SessionTTL  time.Duration `toml:"session_ttl" validate:"gt=0"`
}

// SinkConfig selects where the local backend stores bundles.
type SinkConfig struct {
	Kind       string `toml:"kind" validate:"oneof=dir mongo"`
	MongoURI   string `toml:"mongo_uri" validate:"required_if=Kind mongo"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{EdgePolicy: "latent", DuplicatePolicy: "dedupe"},
		Export: ExportConfig{
			Backend:   "local",
			OutputDir: "Output",
			Timeout:   30 * time.Second,
		},
		Cache: CacheConfig{Backend: "file"},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxSessions: 100,
			SessionTTL:  2 * time.Hour,
		},
		Sink: SinkConfig{Kind: "dir", Database: "geoset", Collection: "bundles"},
	}
}

// Dir returns the geoset config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "geoset")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the default config file. A missing file yields the defaults.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if stderrors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the default config file.
func Save(cfg *Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil
	}
	return Save(Default())
}

// Validate checks every section and returns the first problem as an
// INVALID_INPUT error naming the offending key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config")
	}
	return errors.New(errors.ErrCodeInvalidInput, "config: %s", describe(verrs[0]))
}

func describe(e validator.FieldError) string {
	key := strings.ToLower(e.Namespace())
	key = strings.TrimPrefix(key, "config.")
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", key, e.Value())
	case "excludesall":
		return fmt.Sprintf("%s must not contain path separators", key)
	case "min", "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", key, e.Tag(), e.Param())
	default:
		return fmt.Sprintf("%s failed %s", key, e.Tag())
	}
}

// Policy returns the parsed edge policy.
func (c EditorConfig) Policy() (graph.Policy, error) {
	return graph.ParsePolicy(c.EdgePolicy)
}

// Duplicates returns the parsed duplicate-label policy.
func (c EditorConfig) Duplicates() (label.DuplicatePolicy, error) {
	return label.ParseDuplicatePolicy(c.DuplicatePolicy)
}
