package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/incfile"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/sink"
)

const sampleJSON = `{
  "countries": {"US": ["West"], "UK": []},
  "regions": {"West": ["Zone1"], "East": []},
  "areas": {"Zone1": [], "Zone2": []}
}`

func quiet() *log.Logger { return log.New(io.Discard) }

func TestLocalGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Output")
	d, err := sink.NewDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	b := NewLocal(pipeline.NewRunner(nil, nil, quiet()), d, quiet())

	res, err := b.Generate(context.Background(), []byte(sampleJSON))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !slices.Contains(res.Files, incfile.FileRRRAAA) || res.Location != dir || res.SnapshotHash == "" {
		t.Errorf("Result = %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(dir, incfile.FileRRRAAA))
	if err != nil {
		t.Fatalf("read RRRAAA.inc: %v", err)
	}
	if !strings.Contains(string(data), "West . Zone1") {
		t.Errorf("RRRAAA.inc =\n%s", data)
	}
}

func TestLocalGenerateWithoutSink(t *testing.T) {
	b := NewLocal(pipeline.NewRunner(nil, nil, quiet()), nil, quiet())
	res, err := b.Generate(context.Background(), []byte(sampleJSON))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.Location != "" || len(res.Files) != 6 {
		t.Errorf("Result = %+v", res)
	}
}

func TestLocalGenerateErrors(t *testing.T) {
	b := NewLocal(pipeline.NewRunner(nil, nil, quiet()), nil, quiet())

	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"not json", `{`, "decode snapshot"},
		{"unknown tier", `{"cities": {}}`, "decode snapshot"},
		{"dangling link", `{"countries": {"US": ["Nowhere"]}, "regions": {}, "areas": {}}`, "validate snapshot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Generate(context.Background(), []byte(tt.data))
			if !errors.Is(err, errors.ErrCodeExportBackend) {
				t.Fatalf("err = %v, want EXPORT_BACKEND", err)
			}
			if !strings.HasPrefix(errors.UserMessage(err), tt.wantMsg) {
				t.Errorf("message = %q", errors.UserMessage(err))
			}
		})
	}
}

func TestHTTPGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"countries"`) {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(Result{Files: []string{"CCC.inc"}, Location: "abc123", SnapshotHash: "h"})
	}))
	defer srv.Close()

	b, err := NewHTTP(srv.URL+"/api/generate", 5*time.Second, quiet())
	if err != nil {
		t.Fatal(err)
	}
	res, err := b.Generate(context.Background(), []byte(sampleJSON))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if res.Location != "abc123" || !slices.Equal(res.Files, []string{"CCC.inc"}) {
		t.Errorf("Result = %+v", res)
	}
}

func TestHTTPGenerateRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"regions \"West\" links to unknown areas label","code":"INVALID_FORMAT"}`))
	}))
	defer srv.Close()

	b, err := NewHTTP(srv.URL, 5*time.Second, quiet())
	if err != nil {
		t.Fatal(err)
	}
	_, err = b.Generate(context.Background(), []byte(sampleJSON))
	if !errors.Is(err, errors.ErrCodeExportBackend) {
		t.Fatalf("err = %v, want EXPORT_BACKEND", err)
	}
	if !strings.Contains(errors.UserMessage(err), "links to unknown areas label (status 422)") {
		t.Errorf("message = %q", errors.UserMessage(err))
	}
}

func TestNewHTTPInvalidURL(t *testing.T) {
	if _, err := NewHTTP("ftp://example.com", time.Second, nil); err == nil {
		t.Error("NewHTTP should reject non-http endpoints")
	}
}
