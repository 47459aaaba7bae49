// Package backend implements the export collaborator: the service that
// turns a serialized snapshot into Balmorel set files.
//
// [Local] generates the files in process and hands them to a sink. [HTTP]
// posts the snapshot to a remote geoset server (`POST /api/generate`).
// Either way, failures come back as EXPORT_BACKEND errors whose message is
// shown to the user as-is.
package backend

import (
	"context"

	"github.com/matzehuels/geoset/pkg/errors"
)

// Result is the outcome of a successful export.
type Result struct {
	// Files lists the generated file names.
	Files []string `json:"files"`
	// Location is where the files went (directory or archive id).
	Location string `json:"location,omitempty"`
	// SnapshotHash identifies the exported snapshot.
	SnapshotHash string `json:"snapshot_hash"`
	// Cached reports that generation was served from the cache.
	Cached bool `json:"cached"`
}

// Backend generates set files from a snapshot's canonical JSON.
type Backend interface {
	Generate(ctx context.Context, data []byte) (*Result, error)
}

// fail wraps err as an EXPORT_BACKEND error, keeping an existing coded
// message visible to the user.
func fail(err error, stage string) error {
	if errors.Is(err, errors.ErrCodeExportBackend) {
		return err
	}
	return errors.Wrap(errors.ErrCodeExportBackend, err, "%s: %s", stage, errors.UserMessage(err))
}
