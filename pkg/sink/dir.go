package sink

import (
	"context"
	"path/filepath"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/incfile"
)

// Dir writes bundles into a directory, overwriting files of the same name.
type Dir struct {
	path string
}

// NewDir creates a directory sink. The directory is created on first write.
func NewDir(path string) (*Dir, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return &Dir{path: filepath.Clean(path)}, nil
}

// Write writes every file of b and returns the directory.
func (d *Dir) Write(_ context.Context, b *incfile.Bundle, _ Meta) (string, error) {
	if err := incfile.WriteDir(d.path, b); err != nil {
		return "", err
	}
	return d.path, nil
}

// Close does nothing.
func (d *Dir) Close(context.Context) error { return nil }

var _ Sink = (*Dir)(nil)
