package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/backend"
	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/graph"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/observability"
	"github.com/matzehuels/geoset/pkg/selection"
	"github.com/matzehuels/geoset/pkg/snapshot"
	"github.com/matzehuels/geoset/pkg/tier"
)

// Options configures a Dashboard.
type Options struct {
	EdgePolicy      graph.Policy
	DuplicatePolicy label.DuplicatePolicy
	// Backend handles Export. Export fails when nil.
	Backend backend.Backend
	Logger  *log.Logger
}

// Status is the colored status line.
type Status struct {
	Severity selection.Severity `json:"severity"`
	Message  string             `json:"message"`
}

// ExportResult is delivered by ExportAsync.
type ExportResult struct {
	Result *backend.Result
	Err    error
}

// State is the persistent part of a dashboard: the raw inputs and every
// stored edge, latent ones included.
type State struct {
	Inputs [tier.Count]string `json:"inputs"`
	Edges  []graph.Edge       `json:"edges"`
}

// Dashboard is the explicit application state.
type Dashboard struct {
	opts   Options
	logger *log.Logger

	inputs [tier.Count]string
	sets   label.Sets
	graph  *graph.Graph
	sel    *selection.Machine

	snap   *snapshot.Snapshot
	drawn  []graph.Edge
	status Status
}

// New creates an empty dashboard.
func New(opts Options) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	g := graph.New(opts.EdgePolicy)
	d := &Dashboard{
		opts:   opts,
		logger: logger,
		graph:  g,
		sel:    selection.New(g),
	}
	d.rebuild()
	return d
}

// SetInput replaces the raw text of tier t and rebuilds.
//
// Under the Reject duplicate policy a repeated label leaves the previous
// parse in place, sets a red status and returns the INVALID_INPUT error.
func (d *Dashboard) SetInput(t tier.Tier, text string) error {
	if !t.Valid() {
		return errors.New(errors.ErrCodeInvalidTier, "invalid tier %s", t)
	}
	next := d.inputs
	next[t] = text
	sets, err := label.ParseWithPolicy(next, d.opts.DuplicatePolicy)
	if err != nil {
		d.inputs = next
		d.fail(err)
		return err
	}
	d.inputs = next
	d.sets = sets
	if p, ok := d.sel.Armed(); ok && !sets.Contains(p.Tier, p.Label) {
		d.sel.Disarm()
	}
	d.rebuild()
	return nil
}

// SetInputs replaces all three inputs at once.
func (d *Dashboard) SetInputs(inputs [tier.Count]string) error {
	sets, err := label.ParseWithPolicy(inputs, d.opts.DuplicatePolicy)
	d.inputs = inputs
	if err != nil {
		d.fail(err)
		return err
	}
	d.sets = sets
	d.sel.Disarm()
	d.rebuild()
	return nil
}

// State captures the inputs and stored edges.
func (d *Dashboard) State() State {
	return State{Inputs: d.inputs, Edges: d.graph.Edges()}
}

// Restore replaces the dashboard contents with st. Edges are replayed in
// order; an edge that breaks the tier rules fails the restore and leaves
// the dashboard empty. Inputs that the Reject policy refuses are kept as
// typed, with a deduplicated parse and an error status.
func (d *Dashboard) Restore(st State) error {
	d.graph.Reset()
	d.sel.Disarm()
	for _, e := range st.Edges {
		if err := d.graph.AddEdge(e.From.Label, e.From.Tier, e.To.Label, e.To.Tier); err != nil {
			d.graph.Reset()
			d.rebuild()
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "restore edge %s -> %s", e.From.Label, e.To.Label)
		}
	}
	if err := d.SetInputs(st.Inputs); err != nil {
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			return err
		}
		// There is no earlier parse to keep, so show the deduplicated one.
		// The status line stays red until the input is fixed.
		d.logger.Warn("restored inputs do not parse", "error", err)
		d.sets = label.Parse(st.Inputs)
		d.rebuild()
	}
	return nil
}

// Inputs returns the raw inputs.
func (d *Dashboard) Inputs() [tier.Count]string { return d.inputs }

// Sets returns the current parse.
func (d *Dashboard) Sets() label.Sets { return d.sets }

// Click routes a click on a rendered label into the selection machine.
// Clicking a label that is not part of the current parse is rejected with
// INVALID_LABEL and, like every rejection, returns the selection to idle.
func (d *Dashboard) Click(l string, t tier.Tier) selection.Result {
	if !d.sets.Contains(t, l) {
		d.sel.Disarm()
		err := errors.New(errors.ErrCodeInvalidLabel, "no %s label %q", t, l)
		res := selection.Result{
			Outcome:  selection.OutcomeRejected,
			Severity: selection.SeverityError,
			Message:  errors.UserMessage(err),
			Err:      err,
		}
		d.status = Status{Severity: res.Severity, Message: res.Message}
		return res
	}

	res := d.sel.HandleClick(l, t)
	observability.Editor().OnClick(res.Outcome.String())
	d.status = Status{Severity: res.Severity, Message: res.Message}

	switch res.Outcome {
	case selection.OutcomeConnected:
		d.logger.Debug("connection made", "from", res.Edge.From.Label, "to", res.Edge.To.Label, "new", res.Added)
		d.rebuild()
	case selection.OutcomeRejected:
		d.logger.Debug("connection rejected", "error", res.Err)
	}
	return res
}

// RemoveEdge deletes a stored connection and rebuilds.
func (d *Dashboard) RemoveEdge(a string, ta tier.Tier, b string, tb tier.Tier) (bool, error) {
	d.sel.Disarm()
	removed, err := d.graph.RemoveEdge(a, ta, b, tb)
	if err != nil {
		d.fail(err)
		return false, err
	}
	if removed {
		d.status = Status{Severity: selection.SeverityInfo, Message: fmt.Sprintf("Removed connection between %s and %s", a, b)}
		d.rebuild()
	}
	return removed, nil
}

// Reset removes every connection and disarms the selection. Inputs stay.
func (d *Dashboard) Reset() {
	d.graph.Reset()
	d.sel.Disarm()
	d.status = Status{Severity: selection.SeverityInfo, Message: "All connections removed"}
	d.rebuild()
}

// Snapshot returns the snapshot of the last rebuild. Callers must not
// modify it.
func (d *Dashboard) Snapshot() *snapshot.Snapshot { return d.snap }

// Text returns the canonical JSON of the current snapshot.
func (d *Dashboard) Text() (string, error) { return snapshot.Export(d.snap) }

// Drawn returns the edges drawn by the last rebuild, in snapshot order.
func (d *Dashboard) Drawn() []graph.Edge { return d.drawn }

// Graph returns the underlying edge store.
func (d *Dashboard) Graph() *graph.Graph { return d.graph }

// Status returns the current status line.
func (d *Dashboard) Status() Status { return d.status }

// Notify replaces the status line. Front-ends use it for their own events,
// such as copying the snapshot text.
func (d *Dashboard) Notify(sev selection.Severity, msg string) {
	d.status = Status{Severity: sev, Message: msg}
}

// Selection returns the armed label, if any.
func (d *Dashboard) Selection() (selection.Pending, bool) { return d.sel.Armed() }

// IsArmed reports whether label l of tier t is the armed item.
func (d *Dashboard) IsArmed(l string, t tier.Tier) bool { return d.sel.IsArmed(l, t) }

// Export serializes the current snapshot, hands it to the backend and waits
// for the result. The outcome is applied to the status line.
func (d *Dashboard) Export(ctx context.Context) (*backend.Result, error) {
	res := <-d.ExportAsync(ctx)
	d.ApplyExport(res)
	return res.Result, res.Err
}

// ExportAsync serializes the snapshot in the caller's goroutine and runs
// the backend call in a new one. The returned channel is buffered, so the
// result may be ignored. Apply it with ApplyExport from the owning
// goroutine.
func (d *Dashboard) ExportAsync(ctx context.Context) <-chan ExportResult {
	ch := make(chan ExportResult, 1)
	if d.opts.Backend == nil {
		ch <- ExportResult{Err: errors.New(errors.ErrCodeExportBackend, "no export backend configured")}
		return ch
	}
	data, err := d.snap.MarshalJSON()
	if err != nil {
		ch <- ExportResult{Err: errors.Wrap(errors.ErrCodeExportBackend, err, "serialize snapshot")}
		return ch
	}

	b := d.opts.Backend
	go func() {
		res, err := b.Generate(ctx, data)
		ch <- ExportResult{Result: res, Err: err}
	}()
	return ch
}

// ApplyExport sets the status line from an export outcome and returns the
// selection to idle.
func (d *Dashboard) ApplyExport(r ExportResult) {
	d.sel.Disarm()
	if r.Err != nil {
		d.logger.Warn("export failed", "error", r.Err)
		d.fail(r.Err)
		return
	}
	if r.Result == nil {
		r.Result = &backend.Result{}
	}
	msg := fmt.Sprintf("Generated %d set files", len(r.Result.Files))
	if r.Result.Location != "" {
		msg += " in " + r.Result.Location
	}
	d.status = Status{Severity: selection.SeveritySuccess, Message: msg}
}

func (d *Dashboard) fail(err error) {
	d.status = Status{Severity: selection.SeverityError, Message: errors.UserMessage(err)}
}

func (d *Dashboard) rebuild() {
	start := time.Now()
	d.drawn = nil
	d.snap = d.graph.Rebuild(d.sets, func(e graph.Edge) {
		d.drawn = append(d.drawn, e)
	})
	st := d.snap.Stats()
	observability.Editor().OnRebuild(st.Labels, st.Links, time.Since(start))
}
