package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/pipeline"
)

func TestBundleRef(t *testing.T) {
	path := writeSnapshotFile(t, sampleSnapshot)
	s, err := readSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	hash, err := pipeline.Hash(s)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref, prefix, want string
	}{
		{path, "", hash},
		{path, "base_", hash + ":base_"},
		{"3f9a0c11:base_", "", "3f9a0c11:base_"},
		{filepath.Join(t.TempDir(), "missing.json"), "", ""},
	}
	for i, tt := range tests {
		if tt.want == "" {
			tt.want = tt.ref
		}
		got, err := bundleRef(tt.ref, tt.prefix)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if got != tt.want {
			t.Errorf("bundleRef(%q, %q) = %q, want %q", tt.ref, tt.prefix, got, tt.want)
		}
	}

	if _, err := bundleRef(writeSnapshotFile(t, "{not json"), ""); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad snapshot: err = %v, want INVALID_FORMAT", err)
	}
}

func TestFetchWithoutMongo(t *testing.T) {
	path := writeSnapshotFile(t, sampleSnapshot)

	_, err := runCLI(t, "fetch", path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) || !strings.Contains(err.Error(), "mongodb://") {
		t.Errorf("err = %v, want INVALID_INPUT naming mongodb://", err)
	}

	_, err = runCLI(t, "fetch", path, "--from", "Output")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("--from Output: err = %v, want INVALID_INPUT", err)
	}
}
