// Package selection implements the two-click gesture used to draw a
// connection between two labels.
//
// The first click arms a label. A second click on the same label disarms it;
// a click on any other label completes the gesture and always returns the
// machine to idle, whether the connection was made or rejected:
//
//	m := selection.New(g)
//	m.HandleClick("US", tier.Countries)  // OutcomeArmed
//	m.HandleClick("West", tier.Regions)  // OutcomeConnected, "Connection made!"
//
// The machine has no UI dependencies. Front-ends map [Result.Severity] to
// colors and use [Machine.Armed] to highlight the pending label.
package selection

import (
	"fmt"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/graph"
	"github.com/matzehuels/geoset/pkg/tier"
)

// MsgConnected is the status text of a successful connection.
const MsgConnected = "Connection made!"

// Outcome identifies the transition taken by a click.
type Outcome int

const (
	OutcomeArmed Outcome = iota
	OutcomeDisarmed
	OutcomeConnected
	OutcomeRejected
)

var outcomeNames = [...]string{"armed", "disarmed", "connected", "rejected"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Severity classifies a status message for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	}
	return "info"
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result describes one click transition.
type Result struct {
	Outcome  Outcome
	Severity Severity
	Message  string
	// Edge is the stored canonical edge for OutcomeConnected.
	Edge graph.Edge
	// Added is false when a connected edge already existed.
	Added bool
	// Err is the rejection cause for OutcomeRejected.
	Err error
}

// Pending is the armed endpoint.
type Pending struct {
	Label string
	Tier  tier.Tier
}

// Machine is the selection state: idle, or armed with one pending label.
// It is not safe for concurrent use.
type Machine struct {
	g       *graph.Graph
	pending *Pending
}

// New creates an idle machine that adds completed edges to g.
func New(g *graph.Graph) *Machine {
	return &Machine{g: g}
}

// Armed returns the pending label and true when the machine is armed.
func (m *Machine) Armed() (Pending, bool) {
	if m.pending == nil {
		return Pending{}, false
	}
	return *m.pending, true
}

// IsArmed reports whether label in tier t is the pending endpoint.
func (m *Machine) IsArmed(label string, t tier.Tier) bool {
	return m.pending != nil && m.pending.Label == label && m.pending.Tier == t
}

// Disarm returns the machine to idle without side effects.
func (m *Machine) Disarm() { m.pending = nil }

// HandleClick applies a click on label in tier t.
func (m *Machine) HandleClick(label string, t tier.Tier) Result {
	if m.pending == nil {
		m.pending = &Pending{Label: label, Tier: t}
		return Result{
			Outcome:  OutcomeArmed,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Selected %s in %s", label, t),
		}
	}

	p := *m.pending
	m.pending = nil

	if p.Label == label && p.Tier == t {
		return Result{
			Outcome:  OutcomeDisarmed,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Deselected %s", label),
		}
	}

	e, added, err := m.g.AddEdgeReport(p.Label, p.Tier, label, t)
	if err != nil {
		return Result{
			Outcome:  OutcomeRejected,
			Severity: SeverityError,
			Message:  errors.UserMessage(err),
			Err:      err,
		}
	}
	return Result{
		Outcome:  OutcomeConnected,
		Severity: SeveritySuccess,
		Message:  MsgConnected,
		Edge:     e,
		Added:    added,
	}
}
