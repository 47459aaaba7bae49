package graph

import (
	"slices"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/snapshot"
	"github.com/matzehuels/geoset/pkg/tier"
)

// Policy decides what happens to edges whose endpoint vanished from the
// current parse.
type Policy int

const (
	// PolicyLatent keeps such edges stored; they reappear when the label does.
	PolicyLatent Policy = iota
	// PolicyPrune deletes such edges during Rebuild.
	PolicyPrune
)

// String returns the policy's config name.
func (p Policy) String() string {
	if p == PolicyPrune {
		return "prune"
	}
	return "latent"
}

// ParsePolicy resolves a config name ("latent" or "prune").
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "latent":
		return PolicyLatent, nil
	case "prune":
		return PolicyPrune, nil
	}
	return PolicyLatent, errors.New(errors.ErrCodeInvalidInput, "unknown edge policy %q (want latent or prune)", s)
}

// Node is a tier-qualified label. The same text in two tiers is two nodes.
type Node struct {
	Tier  tier.Tier `json:"tier"`
	Label string    `json:"label"`
}

// Edge is a directed connection. From is always in the tier immediately
// below To.
type Edge struct {
	From Node `json:"from"`
	To   Node `json:"to"`
}

// DrawFunc receives every edge emitted by Rebuild, in snapshot order.
type DrawFunc func(Edge)

// Graph stores edges as an adjacency list from source node to ordered
// target labels (the target tier is implied by the source tier).
//
// The zero value is not usable - use New.
type Graph struct {
	policy  Policy
	out     map[Node][]string
	sources []Node // insertion order of out's keys
}

// New creates an empty graph with the given edge policy.
func New(policy Policy) *Graph {
	return &Graph{
		policy: policy,
		out:    make(map[Node][]string),
	}
}

// Policy returns the graph's edge policy.
func (g *Graph) Policy() Policy { return g.policy }

// canonical validates the pair and orders it lower tier first.
func canonical(source string, sourceTier tier.Tier, target string, targetTier tier.Tier) (Edge, error) {
	if err := tier.CheckAdjacent(sourceTier, targetTier); err != nil {
		return Edge{}, err
	}
	if source == "" || target == "" {
		return Edge{}, errors.New(errors.ErrCodeInvalidLabel, "edge endpoints must not be empty")
	}
	a := Node{Tier: sourceTier, Label: source}
	b := Node{Tier: targetTier, Label: target}
	if a.Tier > b.Tier {
		a, b = b, a
	}
	return Edge{From: a, To: b}, nil
}

// AddEdge connects two labels of adjacent tiers.
//
// It returns a SAME_TIER error when sourceTier == targetTier and a
// NON_ADJACENT_TIER error when the tiers are not consecutive. On success the
// edge is stored lower tier → higher tier regardless of argument order, and
// only once per exact pair.
func (g *Graph) AddEdge(source string, sourceTier tier.Tier, target string, targetTier tier.Tier) error {
	_, _, err := g.AddEdgeReport(source, sourceTier, target, targetTier)
	return err
}

// AddEdgeReport is AddEdge that also returns the stored (canonical) edge and
// whether it was new.
func (g *Graph) AddEdgeReport(source string, sourceTier tier.Tier, target string, targetTier tier.Tier) (Edge, bool, error) {
	e, err := canonical(source, sourceTier, target, targetTier)
	if err != nil {
		return Edge{}, false, err
	}
	targets, known := g.out[e.From]
	if slices.Contains(targets, e.To.Label) {
		return e, false, nil
	}
	if !known {
		g.sources = append(g.sources, e.From)
	}
	g.out[e.From] = append(targets, e.To.Label)
	return e, true, nil
}

// RemoveEdge deletes the connection between two labels, in either argument
// order. It reports whether an edge was removed. Invalid tier pairs return
// the same errors as AddEdge.
func (g *Graph) RemoveEdge(source string, sourceTier tier.Tier, target string, targetTier tier.Tier) (bool, error) {
	e, err := canonical(source, sourceTier, target, targetTier)
	if err != nil {
		return false, err
	}
	return g.remove(e), nil
}

func (g *Graph) remove(e Edge) bool {
	targets, ok := g.out[e.From]
	if !ok || !slices.Contains(targets, e.To.Label) {
		return false
	}
	targets = slices.DeleteFunc(targets, func(s string) bool { return s == e.To.Label })
	if len(targets) == 0 {
		g.dropSource(e.From)
		return true
	}
	g.out[e.From] = targets
	return true
}

func (g *Graph) dropSource(n Node) {
	delete(g.out, n)
	g.sources = slices.DeleteFunc(g.sources, func(s Node) bool { return s == n })
}

// HasEdge reports whether the canonical form of the pair is stored.
func (g *Graph) HasEdge(source string, sourceTier tier.Tier, target string, targetTier tier.Tier) bool {
	e, err := canonical(source, sourceTier, target, targetTier)
	if err != nil {
		return false
	}
	return slices.Contains(g.out[e.From], e.To.Label)
}

// Targets returns the stored target labels of a source node, in insertion
// order, including latent ones. The result is a copy.
func (g *Graph) Targets(t tier.Tier, source string) []string {
	return slices.Clone(g.out[Node{Tier: t, Label: source}])
}

// Edges returns every stored edge, latent ones included, ordered by source
// insertion and then target insertion.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, src := range g.sources {
		next, _ := src.Tier.Next()
		for _, to := range g.out[src] {
			out = append(out, Edge{From: src, To: Node{Tier: next, Label: to}})
		}
	}
	return out
}

// Len returns the number of stored edges.
func (g *Graph) Len() int {
	n := 0
	for _, targets := range g.out {
		n += len(targets)
	}
	return n
}

// Reset removes every edge.
func (g *Graph) Reset() {
	g.out = make(map[Node][]string)
	g.sources = nil
}

// Rebuild projects the store onto the current parse.
//
// Every label of sets gets an (initially empty) snapshot entry. For each
// present source, each stored target that is present in the next tier is
// appended to the entry and passed to draw (which may be nil). Edges with a
// missing endpoint are skipped; under PolicyPrune they are also deleted.
func (g *Graph) Rebuild(sets label.Sets, draw DrawFunc) *snapshot.Snapshot {
	s := snapshot.New()
	for _, t := range tier.All {
		for _, l := range sets.Labels(t) {
			s.AddLabel(t, l)
		}
	}

	for _, t := range tier.All {
		next, ok := t.Next()
		if !ok {
			continue
		}
		for _, l := range sets.Labels(t) {
			for _, to := range g.out[Node{Tier: t, Label: l}] {
				if !sets.Contains(next, to) {
					continue
				}
				s.Append(t, l, to)
				if draw != nil {
					draw(Edge{From: Node{Tier: t, Label: l}, To: Node{Tier: next, Label: to}})
				}
			}
		}
	}

	if g.policy == PolicyPrune {
		g.prune(sets)
	}
	return s
}

// prune deletes edges with an endpoint missing from sets.
func (g *Graph) prune(sets label.Sets) {
	for _, e := range g.Edges() {
		if !sets.Contains(e.From.Tier, e.From.Label) || !sets.Contains(e.To.Tier, e.To.Label) {
			g.remove(e)
		}
	}
}
