package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/geoset/pkg/cache"
)

func TestCacheDirUnderXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "geoset"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".cache", "geoset"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestNewCacheBackends(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	ch, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := ch.(*cache.FileCache)
	if !ok {
		t.Fatalf("file backend gave %T", ch)
	}
	if want := filepath.Join(cacheHome, "geoset"); fc.Dir() != want {
		t.Errorf("FileCache.Dir() = %q, want %q", fc.Dir(), want)
	}

	if ch, _ := c.newCache(ctx, true); !isNullCache(ch) {
		t.Errorf("--no-cache gave %T", ch)
	}
	c.Config.Cache.Backend = "none"
	if ch, _ := c.newCache(ctx, false); !isNullCache(ch) {
		t.Errorf("backend none gave %T", ch)
	}
}

func isNullCache(c cache.Cache) bool {
	_, ok := c.(cache.NullCache)
	return ok
}

func TestLoadConfigDefaultPath(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	path := filepath.Join(configHome, "geoset", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, path, "[editor]\nduplicate_policy = \"reject\"\n\n[cache]\nbackend = \"none\"\n")

	c := New(io.Discard, LogInfo)
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Config.Editor.DuplicatePolicy != "reject" || c.Config.Cache.Backend != "none" {
		t.Errorf("config = %+v", c.Config)
	}
	if c.Config.Export.OutputDir != "Output" {
		t.Errorf("unset keys should keep defaults, OutputDir = %q", c.Config.Export.OutputDir)
	}
}

func TestLoadConfigFlagWins(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "other.toml")
	writeFile(t, path, "[editor]\nedge_policy = \"prune\"\n")

	c := New(io.Discard, LogInfo)
	c.configPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if c.Config.Editor.EdgePolicy != "prune" {
		t.Errorf("EdgePolicy = %q", c.Config.Editor.EdgePolicy)
	}
}
