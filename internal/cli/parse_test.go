package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/tier"
)

func TestResolveLabel(t *testing.T) {
	sets := label.Parse([tier.Count]string{"DK, DE", "DK1, DE", "DK1_A"})

	tests := []struct {
		ref       string
		wantLabel string
		wantTier  tier.Tier
		wantCode  errors.Code
	}{
		{ref: "DK", wantLabel: "DK", wantTier: tier.Countries},
		{ref: "DK1_A", wantLabel: "DK1_A", wantTier: tier.Areas},
		{ref: "regions/DE", wantLabel: "DE", wantTier: tier.Regions},
		{ref: " countries/DE ", wantLabel: "DE", wantTier: tier.Countries},
		{ref: "DE", wantCode: errors.ErrCodeInvalidLabel},
		{ref: "SE", wantCode: errors.ErrCodeInvalidLabel},
		{ref: "areas/DK", wantCode: errors.ErrCodeInvalidLabel},
		{ref: "zones/DK", wantCode: errors.ErrCodeInvalidTier},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			l, tr, err := resolveLabel(sets, tt.ref)
			if tt.wantCode != "" {
				if errors.GetCode(err) != tt.wantCode {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveLabel: %v", err)
			}
			if l != tt.wantLabel || tr != tt.wantTier {
				t.Errorf("resolveLabel = %s/%s, want %s/%s", tr, l, tt.wantTier, tt.wantLabel)
			}
		})
	}
}

func TestParseCommandJSON(t *testing.T) {
	got, err := runCLI(t, "parse",
		"--countries", "DK, DE",
		"--regions", "DK1, DK2",
		"--areas", "DK1_A",
		"--connect", "DK:DK1",
		"-c", "DK:DK2",
		"-c", "DK1:DK1_A",
	)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := `{
  "countries": {
    "DK": [
      "DK1",
      "DK2"
    ],
    "DE": []
  },
  "regions": {
    "DK1": [
      "DK1_A"
    ],
    "DK2": []
  },
  "areas": {
    "DK1_A": []
  }
}
`
	if got != want {
		t.Errorf("parse output:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseCommandYAML(t *testing.T) {
	got, err := runCLI(t, "parse", "--countries", "DK", "--regions", "DK1", "-c", "DK:DK1", "-f", "yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(got, "DK:") || !strings.Contains(got, "- DK1") {
		t.Errorf("yaml output:\n%s", got)
	}
}

func TestParseCommandRejections(t *testing.T) {
	tests := []struct {
		name     string
		connect  string
		wantCode errors.Code
	}{
		{"same tier", "DK:DE", errors.ErrCodeSameTier},
		{"non adjacent", "DK:DK1_A", errors.ErrCodeNonAdjacentTier},
		{"unknown", "DK:SE", errors.ErrCodeInvalidLabel},
		{"malformed", "DK-DK1", errors.ErrCodeInvalidInput},
		{"same label", "DK:countries/DK", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "parse", "--countries", "DK, DE", "--regions", "DK1", "--areas", "DK1_A", "-c", tt.connect)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestParseCommandOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	got, err := runCLI(t, "parse", "--countries", "DK", "-o", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(got, "Wrote "+path) {
		t.Errorf("output = %q", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"DK": []`) {
		t.Errorf("file = %s", data)
	}
}

func TestParseCommandInvalidFormat(t *testing.T) {
	_, err := runCLI(t, "parse", "-f", "svg")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}
