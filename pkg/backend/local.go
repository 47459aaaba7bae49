package backend

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/sink"
	"github.com/matzehuels/geoset/pkg/snapshot"
)

// Local generates set files in process.
type Local struct {
	Runner *pipeline.Runner
	// Sink receives the bundle. A nil sink only generates.
	Sink    sink.Sink
	Options pipeline.GenerateOptions
	Logger  *log.Logger
}

// NewLocal creates a local backend.
func NewLocal(runner *pipeline.Runner, s sink.Sink, logger *log.Logger) *Local {
	if logger == nil {
		logger = log.Default()
	}
	return &Local{Runner: runner, Sink: s, Logger: logger}
}

// Generate decodes and validates data, generates the bundle and writes it
// to the sink.
func (l *Local) Generate(ctx context.Context, data []byte) (*Result, error) {
	s, err := snapshot.Decode(data)
	if err != nil {
		return nil, fail(err, "decode snapshot")
	}
	if err := snapshot.Validate(s); err != nil {
		return nil, fail(err, "validate snapshot")
	}

	b, cached, err := l.Runner.Generate(ctx, s, l.Options)
	if err != nil {
		return nil, fail(err, "generate set files")
	}
	hash, _ := pipeline.Hash(s)

	res := &Result{Files: b.Names(), SnapshotHash: hash, Cached: cached}
	if l.Sink != nil {
		canonical, _ := snapshot.Export(s)
		loc, err := l.Sink.Write(ctx, b, sink.Meta{
			SnapshotHash: hash,
			Prefix:       l.Options.Prefix,
			Snapshot:     canonical,
			CreatedAt:    time.Now().UTC(),
		})
		if err != nil {
			return nil, fail(err, "store set files")
		}
		res.Location = loc
	}

	l.Logger.Info("exported snapshot", "files", len(res.Files), "location", res.Location, "cached", cached)
	return res, nil
}

var _ Backend = (*Local)(nil)
