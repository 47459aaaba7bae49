// Package cli implements the geoset command-line interface.
//
// This package provides the interactive dashboard (tui), one-shot commands
// for building snapshots, generating set files and rendering diagrams, and
// the HTTP server. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - tui: Interactive dashboard for entering labels and drawing connections
//   - parse: Build a snapshot from flags and print it
//   - generate: Turn a snapshot into .inc set files
//   - render: Render a snapshot as json, yaml, dot or svg
//   - serve: Run the HTTP API
//   - cache: Manage the render and bundle cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command and logs its steps and its outcome.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// step logs an intermediate stage at debug level.
func (p *progress) step(msg string, keyvals ...any) {
	p.logger.Debug(msg, append(keyvals, "at", p.elapsed())...)
}

// done logs the outcome at info level with the total elapsed time, e.g.
// "Exported hash=3f9a0c11d2e4 files=6 elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", p.elapsed())...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
