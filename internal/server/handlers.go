package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/geoset/pkg/backend"
	"github.com/matzehuels/geoset/pkg/buildinfo"
	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/graph"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/render"
	"github.com/matzehuels/geoset/pkg/selection"
	"github.com/matzehuels/geoset/pkg/snapshot"
	"github.com/matzehuels/geoset/pkg/tier"
)

// sessionView is the JSON shape of a session.
type sessionView struct {
	ID       string            `json:"id"`
	Inputs   map[string]string `json:"inputs"`
	Snapshot json.RawMessage   `json:"snapshot"`
	Status   dashboard.Status  `json:"status"`
	Selected *graph.Node       `json:"selected,omitempty"`
	Stored   int               `json:"stored_edges"`
}

func newSessionView(id string, d *dashboard.Dashboard) (sessionView, error) {
	snap, err := d.Snapshot().MarshalJSON()
	if err != nil {
		return sessionView{}, err
	}
	inputs := d.Inputs()
	v := sessionView{
		ID:       id,
		Inputs:   make(map[string]string, tier.Count),
		Snapshot: snap,
		Status:   d.Status(),
		Stored:   d.Graph().Len(),
	}
	for _, t := range tier.All {
		v.Inputs[t.String()] = inputs[t]
	}
	if p, ok := d.Selection(); ok {
		v.Selected = &graph.Node{Tier: p.Tier, Label: p.Label}
	}
	return v, nil
}

// withSession looks up the {id} session and runs fn under its lock.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, status int, fn func(d *dashboard.Dashboard) error) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var view sessionView
	err = sess.Do(func(d *dashboard.Dashboard) error {
		if err := fn(d); err != nil {
			return err
		}
		var verr error
		view, verr = newSessionView(sess.ID, d)
		return verr
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, view)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
		"build":    buildinfo.Get(),
	})
}

type createRequest struct {
	Inputs map[string]string `json:"inputs"`
	State  *dashboard.State  `json:"state,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	inputs, err := parseInputs(req.Inputs)
	if err != nil {
		writeError(w, err)
		return
	}

	sess, err := s.store.Create(s.dashboardOptions())
	if err != nil {
		writeError(w, err)
		return
	}
	var view sessionView
	err = sess.Do(func(d *dashboard.Dashboard) error {
		var err error
		if req.State != nil {
			err = d.Restore(*req.State)
		} else {
			err = d.SetInputs(inputs)
		}
		if err != nil {
			return err
		}
		view, err = newSessionView(sess.ID, d)
		return err
	})
	if err != nil {
		_ = s.store.Delete(sess.ID)
		writeError(w, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID)
	writeJSON(w, http.StatusCreated, view)
}

func parseInputs(in map[string]string) ([tier.Count]string, error) {
	var out [tier.Count]string
	for name, text := range in {
		t, err := tier.Parse(name)
		if err != nil {
			return out, err
		}
		out[t] = text
	}
	return out, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, http.StatusOK, func(*dashboard.Dashboard) error { return nil })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inputRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSetInput(w http.ResponseWriter, r *http.Request) {
	t, err := tier.Parse(chi.URLParam(r, "tier"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req inputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.withSession(w, r, http.StatusOK, func(d *dashboard.Dashboard) error {
		return d.SetInput(t, req.Text)
	})
}

type clickRequest struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
}

type clickView struct {
	Outcome  selection.Outcome  `json:"outcome"`
	Severity selection.Severity `json:"severity"`
	Message  string             `json:"message"`
	Code     string             `json:"code,omitempty"`
	Edge     *graph.Edge        `json:"edge,omitempty"`
	Added    bool               `json:"added,omitempty"`
	Session  sessionView        `json:"session"`
}

// handleClick answers 200 for every click the dashboard handled,
// rejections included: a rejected connection is a normal outcome shown in
// the status line, not a failed request.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := tier.Parse(req.Tier)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var out clickView
	err = sess.Do(func(d *dashboard.Dashboard) error {
		res := d.Click(req.Label, t)
		out = clickView{
			Outcome:  res.Outcome,
			Severity: res.Severity,
			Message:  res.Message,
			Code:     string(errors.GetCode(res.Err)),
			Added:    res.Added,
		}
		if res.Outcome == selection.OutcomeConnected {
			e := res.Edge
			out.Edge = &e
		}
		var verr error
		out.Session, verr = newSessionView(sess.ID, d)
		return verr
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type edgeRequest struct {
	From graph.Node `json:"from"`
	To   graph.Node `json:"to"`
}

func (s *Server) handleRemoveEdge(w http.ResponseWriter, r *http.Request) {
	var req edgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.withSession(w, r, http.StatusOK, func(d *dashboard.Dashboard) error {
		removed, err := d.RemoveEdge(req.From.Label, req.From.Tier, req.To.Label, req.To.Tier)
		if err != nil {
			return err
		}
		if !removed {
			return errors.New(errors.ErrCodeNotFound, "no connection between %s and %s", req.From.Label, req.To.Label)
		}
		return nil
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, http.StatusOK, func(d *dashboard.Dashboard) error {
		d.Reset()
		return nil
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))

	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var snap *snapshot.Snapshot
	_ = sess.Do(func(d *dashboard.Dashboard) error {
		snap = d.Snapshot()
		return nil
	})

	out, _, err := s.opts.Runner.Render(r.Context(), snap, pipeline.RenderOptions{Format: format, Detailed: detailed})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

type exportView struct {
	Result  *backend.Result `json:"result"`
	Session sessionView     `json:"session"`
}

// handleExport serializes the snapshot under the session lock, runs the
// backend without it, then applies the outcome under the lock again.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var pending <-chan dashboard.ExportResult
	_ = sess.Do(func(d *dashboard.Dashboard) error {
		pending = d.ExportAsync(r.Context())
		return nil
	})
	res := <-pending

	var out exportView
	err = sess.Do(func(d *dashboard.Dashboard) error {
		d.ApplyExport(res)
		var verr error
		out.Session, verr = newSessionView(sess.ID, d)
		return verr
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}
	out.Result = res.Result
	writeJSON(w, http.StatusOK, out)
}

// handleGenerate is the remote export backend: it takes a snapshot's JSON
// and returns the generation Result.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.opts.Backend == nil {
		writeError(w, errors.New(errors.ErrCodeExportBackend, "no generator configured"))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	res, err := s.opts.Backend.Generate(r.Context(), data)
	if err != nil {
		s.logger.Warn("generate failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type boxRequest struct {
	graph.Node
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type connectorView struct {
	Edge   graph.Edge   `json:"edge"`
	From   render.Point `json:"from"`
	To     render.Point `json:"to"`
	Length float64      `json:"length"`
	Angle  float64      `json:"angle"`
}

// handleConnectors projects the drawn edges onto the item boxes measured by
// a front-end and returns the line geometry. Edges with an unmeasured end
// are left out.
func (s *Server) handleConnectors(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Boxes []boxRequest `json:"boxes"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	boxes := make(map[graph.Node]render.Box, len(req.Boxes))
	for _, b := range req.Boxes {
		if !b.Tier.Valid() || b.W < 0 || b.H < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid box for %q", b.Label))
			return
		}
		boxes[b.Node] = render.Box{X: b.X, Y: b.Y, W: b.W, H: b.H}
	}

	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var conns []render.Connector
	_ = sess.Do(func(d *dashboard.Dashboard) error {
		conns = render.Project(boxes, d.Drawn())
		return nil
	})

	out := make([]connectorView, len(conns))
	for i, c := range conns {
		out[i] = connectorView{Edge: c.Edge, From: c.From, To: c.To, Length: c.Length, Angle: c.Angle}
	}
	writeJSON(w, http.StatusOK, map[string]any{"connectors": out})
}
