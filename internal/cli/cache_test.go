package cli

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/geoset/pkg/cache"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCacheClear(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = fc.Set(ctx, "bundle:abc:def", []byte("x"), 0)
	_ = fc.Set(ctx, "render:abc:svg", []byte("y"), 0)

	got, err := runCLIWithCache(t, cacheHome, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(got, "Cleared 2 cached entries") {
		t.Errorf("output = %q", got)
	}
	if _, hit, _ := fc.Get(ctx, "bundle:abc:def"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestCacheClearEmpty(t *testing.T) {
	got, err := runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(got, "Cache is empty") {
		t.Errorf("output = %q", got)
	}
}

func TestCachePath(t *testing.T) {
	cacheHome := t.TempDir()
	got, err := runCLIWithCache(t, cacheHome, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasPrefix(got, cacheHome) || !strings.HasSuffix(strings.TrimSpace(got), appName) {
		t.Errorf("cache path = %q", got)
	}
}
