package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes the root command with an isolated config and cache and
// returns everything written to out.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithCache(t, t.TempDir(), args...)
}

func runCLIWithCache(t *testing.T, cacheHome string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithLogger(t, cacheHome, New(io.Discard, LogInfo), args...)
}

// runCLIWithLogger is runCLIWithCache for a caller-built CLI, so tests can
// read what the commands log.
func runCLIWithLogger(t *testing.T, cacheHome string, c *CLI, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	root := c.RootCommand()
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	for _, name := range []string{"tui", "parse", "generate", "fetch", "render", "serve", "cache", "completion"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootVersion(t *testing.T) {
	got, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(got, appName) {
		t.Errorf("version output %q does not name %s", got, appName)
	}
}

func TestRootRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, "[editor]\nedge_policy = \"forget\"\n")

	_, err := runCLI(t, "--config", path, "parse")
	if err == nil || !strings.Contains(err.Error(), "edge_policy") {
		t.Errorf("err = %v, want edge_policy validation error", err)
	}
}

func TestCompletion(t *testing.T) {
	got, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(got, "geoset") {
		t.Error("bash completion does not mention geoset")
	}
}
