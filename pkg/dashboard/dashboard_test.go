package dashboard

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/backend"
	geoerrors "github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/graph"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/selection"
	"github.com/matzehuels/geoset/pkg/tier"
)

func newTestDashboard(t *testing.T, opts Options) *Dashboard {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	d := New(opts)
	for i, text := range []string{"US, UK", "West, East", "Zone1, Zone2"} {
		if err := d.SetInput(tier.Tier(i), text); err != nil {
			t.Fatalf("SetInput: %v", err)
		}
	}
	return d
}

func TestScenarioConnect(t *testing.T) {
	d := newTestDashboard(t, Options{})

	if got := d.Sets().Labels(tier.Regions); !slices.Equal(got, []string{"West", "East"}) {
		t.Fatalf("regions = %v", got)
	}

	d.Click("US", tier.Countries)
	if p, ok := d.Selection(); !ok || p.Label != "US" {
		t.Fatalf("Selection() = %v, %v", p, ok)
	}
	res := d.Click("West", tier.Regions)
	if res.Outcome != selection.OutcomeConnected {
		t.Fatalf("Outcome = %v", res.Outcome)
	}

	if got := d.Snapshot().Links(tier.Countries, "US"); !slices.Equal(got, []string{"West"}) {
		t.Errorf(`snapshot["countries"]["US"] = %v`, got)
	}
	if d.Status() != (Status{Severity: selection.SeveritySuccess, Message: selection.MsgConnected}) {
		t.Errorf("Status() = %+v", d.Status())
	}
	if len(d.Drawn()) != 1 {
		t.Errorf("Drawn() = %v", d.Drawn())
	}
	if _, ok := d.Selection(); ok {
		t.Error("selection should be idle")
	}
}

func TestScenarioRejections(t *testing.T) {
	tests := []struct {
		name     string
		second   string
		tier     tier.Tier
		wantCode geoerrors.Code
	}{
		{"same tier", "UK", tier.Countries, geoerrors.ErrCodeSameTier},
		{"countries to areas", "Zone1", tier.Areas, geoerrors.ErrCodeNonAdjacentTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDashboard(t, Options{})
			d.Click("US", tier.Countries)
			res := d.Click(tt.second, tt.tier)

			if !geoerrors.Is(res.Err, tt.wantCode) {
				t.Errorf("Err = %v, want %s", res.Err, tt.wantCode)
			}
			if d.Graph().Len() != 0 {
				t.Error("no edge should be stored")
			}
			if _, ok := d.Selection(); ok {
				t.Error("selection should reset to idle")
			}
			if d.Status().Severity != selection.SeverityError {
				t.Errorf("Status() = %+v", d.Status())
			}
		})
	}
}

func TestClickUnknownLabel(t *testing.T) {
	d := newTestDashboard(t, Options{})
	d.Click("US", tier.Countries)

	res := d.Click("Mars", tier.Regions)
	if !geoerrors.Is(res.Err, geoerrors.ErrCodeInvalidLabel) {
		t.Errorf("Err = %v", res.Err)
	}
	if res.Outcome != selection.OutcomeRejected {
		t.Errorf("Outcome = %v, want rejected", res.Outcome)
	}
	if _, ok := d.Selection(); ok {
		t.Error("unknown label click should return the selection to idle")
	}
}

func TestRelabelLatent(t *testing.T) {
	d := newTestDashboard(t, Options{})
	d.Click("US", tier.Countries)
	d.Click("West", tier.Regions)

	_ = d.SetInput(tier.Regions, "East")
	if len(d.Snapshot().Links(tier.Countries, "US")) != 0 {
		t.Error("edge to removed label should be hidden")
	}

	_ = d.SetInput(tier.Regions, "West, East")
	if got := d.Snapshot().Links(tier.Countries, "US"); !slices.Equal(got, []string{"West"}) {
		t.Errorf("latent edge did not reappear: %v", got)
	}
}

func TestRelabelPrune(t *testing.T) {
	d := newTestDashboard(t, Options{EdgePolicy: graph.PolicyPrune})
	d.Click("US", tier.Countries)
	d.Click("West", tier.Regions)

	_ = d.SetInput(tier.Regions, "East")
	_ = d.SetInput(tier.Regions, "West, East")
	if got := d.Snapshot().Links(tier.Countries, "US"); len(got) != 0 {
		t.Errorf("pruned edge reappeared: %v", got)
	}
}

func TestRelabelDisarmsVanishedSelection(t *testing.T) {
	d := newTestDashboard(t, Options{})
	d.Click("West", tier.Regions)
	_ = d.SetInput(tier.Regions, "East")
	if _, ok := d.Selection(); ok {
		t.Error("selection of a vanished label should be cleared")
	}
}

func TestDuplicateReject(t *testing.T) {
	d := newTestDashboard(t, Options{DuplicatePolicy: label.Reject})
	err := d.SetInput(tier.Countries, "US, US")
	if !geoerrors.Is(err, geoerrors.ErrCodeInvalidInput) {
		t.Fatalf("SetInput error = %v", err)
	}
	if d.Inputs()[tier.Countries] != "US, US" {
		t.Error("raw input should keep what was typed")
	}
	if got := d.Sets().Labels(tier.Countries); !slices.Equal(got, []string{"US", "UK"}) {
		t.Errorf("previous parse should stay: %v", got)
	}
	if d.Status().Severity != selection.SeverityError {
		t.Errorf("Status() = %+v", d.Status())
	}
}

func TestRemoveEdgeAndReset(t *testing.T) {
	d := newTestDashboard(t, Options{})
	d.Click("US", tier.Countries)
	d.Click("West", tier.Regions)
	d.Click("West", tier.Regions)
	d.Click("Zone1", tier.Areas)

	removed, err := d.RemoveEdge("West", tier.Regions, "US", tier.Countries)
	if err != nil || !removed {
		t.Fatalf("RemoveEdge = %v, %v", removed, err)
	}
	if d.Snapshot().Stats().Links != 1 {
		t.Errorf("links = %d, want 1", d.Snapshot().Stats().Links)
	}

	if _, err := d.RemoveEdge("US", tier.Countries, "Zone1", tier.Areas); !geoerrors.Is(err, geoerrors.ErrCodeNonAdjacentTier) {
		t.Errorf("RemoveEdge non-adjacent error = %v", err)
	}

	d.Reset()
	if d.Snapshot().Stats().Links != 0 || d.Graph().Len() != 0 {
		t.Error("Reset should remove every connection")
	}
	if d.Snapshot().Stats().Labels != 6 {
		t.Error("Reset should keep labels")
	}
}

func TestText(t *testing.T) {
	d := newTestDashboard(t, Options{})
	d.Click("US", tier.Countries)
	d.Click("West", tier.Regions)

	text, err := d.Text()
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "countries": {
    "US": [
      "West"
    ],
    "UK": []
  },
  "regions": {
    "West": [],
    "East": []
  },
  "areas": {
    "Zone1": [],
    "Zone2": []
  }
}`
	if text != want {
		t.Errorf("Text() =\n%s\nwant\n%s", text, want)
	}
}

type fakeBackend struct {
	got []byte
	res *backend.Result
	err error
}

func (f *fakeBackend) Generate(_ context.Context, data []byte) (*backend.Result, error) {
	f.got = data
	return f.res, f.err
}

func TestExport(t *testing.T) {
	fb := &fakeBackend{res: &backend.Result{Files: []string{"CCC.inc", "RRR.inc"}, Location: "Output"}}
	d := newTestDashboard(t, Options{Backend: fb})
	d.Click("US", tier.Countries)

	res, err := d.Export(context.Background())
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if res.Location != "Output" {
		t.Errorf("Result = %+v", res)
	}
	if len(fb.got) == 0 {
		t.Error("backend received no data")
	}
	if d.Status() != (Status{Severity: selection.SeveritySuccess, Message: "Generated 2 set files in Output"}) {
		t.Errorf("Status() = %+v", d.Status())
	}
	if _, ok := d.Selection(); ok {
		t.Error("export should return the selection to idle")
	}
}

func TestExportFailure(t *testing.T) {
	fb := &fakeBackend{err: geoerrors.Wrap(geoerrors.ErrCodeExportBackend, errors.New("refused"), "remote backend: refused")}
	d := newTestDashboard(t, Options{Backend: fb})

	_, err := d.Export(context.Background())
	if !geoerrors.Is(err, geoerrors.ErrCodeExportBackend) {
		t.Fatalf("Export error = %v", err)
	}
	if d.Status() != (Status{Severity: selection.SeverityError, Message: "remote backend: refused"}) {
		t.Errorf("Status() = %+v", d.Status())
	}
	if d.Graph().Len() != 0 || d.Snapshot().Stats().Labels != 6 {
		t.Error("export failure must not touch the graph")
	}
}

func TestExportWithoutBackend(t *testing.T) {
	d := newTestDashboard(t, Options{})
	if _, err := d.Export(context.Background()); !geoerrors.Is(err, geoerrors.ErrCodeExportBackend) {
		t.Errorf("Export error = %v", err)
	}
}

func TestExportAsyncIgnored(t *testing.T) {
	fb := &fakeBackend{res: &backend.Result{}}
	d := newTestDashboard(t, Options{Backend: fb})

	ch := d.ExportAsync(context.Background())
	// the edit continues while the export runs
	d.Click("US", tier.Countries)

	select {
	case r := <-ch:
		if r.Err != nil {
			t.Errorf("ExportAsync error: %v", r.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ExportAsync never delivered")
	}
}

func TestStateRestore(t *testing.T) {
	d := newTestDashboard(t, Options{})
	d.Click("US", tier.Countries)
	d.Click("West", tier.Regions)
	d.Click("East", tier.Regions)
	d.Click("Zone2", tier.Areas)

	st := d.State()
	if len(st.Edges) != 2 {
		t.Fatalf("State().Edges = %v", st.Edges)
	}

	restored := New(Options{Logger: log.New(io.Discard)})
	if err := restored.Restore(st); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want, _ := d.Text()
	got, _ := restored.Text()
	if got != want {
		t.Errorf("restored snapshot =\n%s\nwant\n%s", got, want)
	}
}

func TestStateRestoreRejectedInput(t *testing.T) {
	d := newTestDashboard(t, Options{DuplicatePolicy: label.Reject})
	d.Click("US", tier.Countries)
	d.Click("West", tier.Regions)
	_ = d.SetInput(tier.Regions, "West, West")

	st := d.State()
	if st.Inputs[tier.Regions] != "West, West" {
		t.Fatalf("State().Inputs = %q", st.Inputs)
	}

	restored := New(Options{DuplicatePolicy: label.Reject, Logger: log.New(io.Discard)})
	if err := restored.Restore(st); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Inputs() != st.Inputs {
		t.Errorf("Inputs() = %q, want %q", restored.Inputs(), st.Inputs)
	}
	if got := restored.Sets().Labels(tier.Regions); !slices.Equal(got, []string{"West"}) {
		t.Errorf("regions = %v, want [West]", got)
	}
	if got := restored.Snapshot().Links(tier.Countries, "US"); !slices.Equal(got, []string{"West"}) {
		t.Errorf("links = %v, want [West]", got)
	}
	if restored.Status().Severity != selection.SeverityError {
		t.Errorf("Status() = %+v, want error", restored.Status())
	}

	again := New(Options{DuplicatePolicy: label.Reject, Logger: log.New(io.Discard)})
	if err := again.Restore(restored.State()); err != nil {
		t.Fatalf("second Restore: %v", err)
	}
}

func TestRestoreRejectsBadEdge(t *testing.T) {
	d := New(Options{Logger: log.New(io.Discard)})
	st := State{
		Inputs: [tier.Count]string{"US", "West", "Zone1"},
		Edges: []graph.Edge{{
			From: graph.Node{Tier: tier.Countries, Label: "US"},
			To:   graph.Node{Tier: tier.Areas, Label: "Zone1"},
		}},
	}
	if err := d.Restore(st); !geoerrors.Is(err, geoerrors.ErrCodeInvalidInput) {
		t.Errorf("Restore() = %v, want INVALID_INPUT", err)
	}
	if d.Graph().Len() != 0 {
		t.Error("failed restore should leave no edges")
	}
}
