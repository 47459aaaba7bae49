// Package snapshot provides the exported nested view of the connection graph:
// tier name → label → ordered connected labels.
//
// A Snapshot is rebuilt from scratch on every display update and always
// reflects only the current label sets plus the edges whose endpoints both
// survive. Key order is significant: tiers appear in tier order and labels in
// insertion (input) order, which is what makes the serialized form canonical.
//
// # Wire Format
//
//	{
//	  "countries": {
//	    "US": [
//	      "West"
//	    ],
//	    "UK": []
//	  },
//	  "regions": { ... },
//	  "areas": { ... }
//	}
//
// All three tier keys are always present. Use [Export] for the canonical
// JSON text, [ExportYAML] for YAML, and [Decode] to read the JSON back.
package snapshot

import (
	"slices"

	"github.com/matzehuels/geoset/pkg/tier"
)

// Snapshot is an ordered mapping tier → label → connected labels.
// The zero value is not usable; create one with New.
type Snapshot struct {
	tiers [tier.Count]*section
}

type section struct {
	order []string
	links map[string][]string
}

// Link is a single connection as it appears in a snapshot.
type Link struct {
	Tier tier.Tier // tier of From; To lives in the next tier
	From string
	To   string
}

// Stats summarizes a snapshot.
type Stats struct {
	Labels int
	Links  int
}

// New creates an empty snapshot with all three tiers present.
func New() *Snapshot {
	s := &Snapshot{}
	for i := range s.tiers {
		s.tiers[i] = &section{links: make(map[string][]string)}
	}
	return s
}

// AddLabel ensures label has an entry in tier t. Existing entries are kept.
func (s *Snapshot) AddLabel(t tier.Tier, label string) {
	sec := s.tiers[t]
	if _, ok := sec.links[label]; ok {
		return
	}
	sec.order = append(sec.order, label)
	sec.links[label] = []string{}
}

// Append adds target to label's connected list in tier t, creating the
// label entry if needed. Repeated targets are ignored.
func (s *Snapshot) Append(t tier.Tier, label, target string) {
	s.AddLabel(t, label)
	sec := s.tiers[t]
	if slices.Contains(sec.links[label], target) {
		return
	}
	sec.links[label] = append(sec.links[label], target)
}

// Labels returns the labels of tier t in insertion order.
func (s *Snapshot) Labels(t tier.Tier) []string {
	if !t.Valid() {
		return nil
	}
	return slices.Clone(s.tiers[t].order)
}

// Has reports whether tier t has an entry for label.
func (s *Snapshot) Has(t tier.Tier, label string) bool {
	if !t.Valid() {
		return false
	}
	_, ok := s.tiers[t].links[label]
	return ok
}

// Links returns the connected labels of label in tier t, or nil when the
// label has no entry. An entry without connections returns an empty slice.
func (s *Snapshot) Links(t tier.Tier, label string) []string {
	if !t.Valid() {
		return nil
	}
	l, ok := s.tiers[t].links[label]
	if !ok {
		return nil
	}
	return slices.Clone(l)
}

// AllLinks returns every connection in canonical order.
func (s *Snapshot) AllLinks() []Link {
	var out []Link
	for _, t := range tier.All {
		sec := s.tiers[t]
		for _, from := range sec.order {
			for _, to := range sec.links[from] {
				out = append(out, Link{Tier: t, From: from, To: to})
			}
		}
	}
	return out
}

// Stats counts labels and links.
func (s *Snapshot) Stats() Stats {
	var st Stats
	for _, sec := range s.tiers {
		st.Labels += len(sec.order)
		for _, l := range sec.links {
			st.Links += len(l)
		}
	}
	return st
}

// Equal reports whether a and b hold the same entries in the same order.
func Equal(a, b *Snapshot) bool {
	for _, t := range tier.All {
		sa, sb := a.tiers[t], b.tiers[t]
		if !slices.Equal(sa.order, sb.order) {
			return false
		}
		for _, l := range sa.order {
			if !slices.Equal(sa.links[l], sb.links[l]) {
				return false
			}
		}
	}
	return true
}
