package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	logger.Info("connection made", "from", "DK", "to", "DK1")

	line := buf.String()
	if strings.Contains(line, "hidden") {
		t.Error("debug line written at info level")
	}
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("line %q does not start with a HH:MM:SS.cc timestamp", line)
	}
	if !strings.Contains(line, "from=DK") || !strings.Contains(line, "to=DK1") {
		t.Errorf("line %q lacks key/value pairs", line)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.step("snapshot loaded", "bytes", 42)
	prog.done("Exported", "files", 6)

	logs := buf.String()
	if strings.Contains(logs, "snapshot loaded") {
		t.Error("step logged at info level")
	}
	if !regexp.MustCompile(`Exported files=6 elapsed=\S+s`).MatchString(logs) {
		t.Errorf("progress line = %q", logs)
	}

	buf.Reset()
	prog = newProgress(newLogger(&buf, log.DebugLevel))
	prog.step("snapshot loaded", "bytes", 42)
	if !regexp.MustCompile(`snapshot loaded bytes=42 at=\S+s`).MatchString(buf.String()) {
		t.Errorf("step line = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("bare context should yield the default logger")
	}
	if got := loggerFromContext(withLogger(context.Background(), logger)); got != logger {
		t.Error("attached logger not returned")
	}
}

// cliLogs runs the CLI at level and returns what the commands logged.
func cliLogs(t *testing.T, level log.Level, args ...string) string {
	t.Helper()
	var logs bytes.Buffer
	if _, err := runCLIWithLogger(t, t.TempDir(), New(&logs, level), args...); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return logs.String()
}

func TestGenerateLogsExportedHash(t *testing.T) {
	path := writeSnapshotFile(t, sampleSnapshot)
	logs := cliLogs(t, LogInfo, "generate", path, "-o", t.TempDir(), "--no-cache")

	if !regexp.MustCompile(`Exported hash=[0-9a-f]{12} files=6 cached=false elapsed=`).MatchString(logs) {
		t.Errorf("logs = %q", logs)
	}
}

func TestRenderLogsFormat(t *testing.T) {
	path := writeSnapshotFile(t, sampleSnapshot)
	dot := filepath.Join(t.TempDir(), "snap.dot")
	logs := cliLogs(t, LogInfo, "render", path, "-f", "dot", "-o", dot, "--no-cache")

	if !strings.Contains(logs, "Rendered format=dot cached=false elapsed=") {
		t.Errorf("logs = %q", logs)
	}
}

func TestCommandsLogAtDebug(t *testing.T) {
	path := writeSnapshotFile(t, sampleSnapshot)
	dot := filepath.Join(t.TempDir(), "snap.dot")

	logs := cliLogs(t, LogDebug, "render", path, "-f", "dot", "-o", dot, "--no-cache")
	for _, want := range []string{"loaded config", "loaded snapshot", "labels=5", "links=3"} {
		if !strings.Contains(logs, want) {
			t.Errorf("debug logs lack %q:\n%s", want, logs)
		}
	}

	if logs := cliLogs(t, LogInfo, "render", path, "-f", "dot", "-o", dot, "--no-cache"); strings.Contains(logs, "loaded snapshot") {
		t.Error("debug line written at info level")
	}
}
