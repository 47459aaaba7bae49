// Package label turns the three freeform text inputs of the dashboard into
// ordered, normalized label sets, one per tier.
//
// Each input is split on commas. Pieces are trimmed, empty pieces are
// dropped, and every internal run of whitespace collapses to a single
// underscore, so "North  Sea" becomes "North_Sea". Parsing is a full,
// independent reparse on every call: nothing is carried between calls.
//
// Labels double as storage keys in the connection graph, so two identical
// labels in one tier would collide. The DuplicatePolicy decides what happens:
// Dedupe keeps the first occurrence and reports the rest, Reject fails the
// parse.
package label

import (
	"slices"
	"strings"
	"unicode"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/tier"
)

// Separator splits one raw input into label pieces.
const Separator = ","

// Normalize trims s and collapses internal whitespace runs to "_".
// Whitespace is any Unicode space, including no-break and ideographic
// spaces, plus the byte order mark.
func Normalize(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), "_")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// DuplicatePolicy controls how repeated labels within one tier are handled.
type DuplicatePolicy int

const (
	// Dedupe keeps the first occurrence of a label and records later
	// repeats in Sets.Duplicates.
	Dedupe DuplicatePolicy = iota
	// Reject fails the parse with an INVALID_INPUT error.
	Reject
)

// String returns the policy's config name.
func (p DuplicatePolicy) String() string {
	if p == Reject {
		return "reject"
	}
	return "dedupe"
}

// ParseDuplicatePolicy resolves a config name ("dedupe" or "reject").
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "dedupe":
		return Dedupe, nil
	case "reject":
		return Reject, nil
	}
	return Dedupe, errors.New(errors.ErrCodeInvalidInput, "unknown duplicate policy %q (want dedupe or reject)", s)
}

// Duplicate records a label that appeared more than once in one tier.
type Duplicate struct {
	Tier  tier.Tier
	Label string
}

// Sets holds the parsed labels of all three tiers in input order.
// The zero value is an empty parse.
type Sets struct {
	labels [tier.Count][]string
	index  [tier.Count]map[string]struct{}

	// Duplicates lists repeats dropped under the Dedupe policy.
	Duplicates []Duplicate
}

// NewSets builds Sets directly from per-tier label lists, applying the
// Dedupe policy. Labels are used as given; callers normalize first.
func NewSets(countries, regions, areas []string) Sets {
	var s Sets
	for i, labels := range [tier.Count][]string{countries, regions, areas} {
		for _, l := range labels {
			s.add(tier.Tier(i), l)
		}
	}
	return s
}

// Parse parses the three raw inputs with the Dedupe policy.
// It never fails: malformed input is filtered silently.
func Parse(inputs [tier.Count]string) Sets {
	s, _ := ParseWithPolicy(inputs, Dedupe)
	return s
}

// ParseWithPolicy parses the three raw inputs (countries, regions, areas).
// Under Reject it returns an INVALID_INPUT error naming the first repeated
// label; under Dedupe it never returns an error.
func ParseWithPolicy(inputs [tier.Count]string, policy DuplicatePolicy) (Sets, error) {
	var s Sets
	for _, t := range tier.All {
		for _, piece := range Split(inputs[t]) {
			if !s.add(t, piece) && policy == Reject {
				return Sets{}, errors.New(errors.ErrCodeInvalidInput, "duplicate label %q in %s", piece, t)
			}
		}
	}
	return s, nil
}

// Split splits one raw input into normalized, non-empty labels in order.
// Repeats are preserved.
func Split(raw string) []string {
	var out []string
	for _, piece := range strings.Split(raw, Separator) {
		if l := Normalize(piece); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// add appends l to tier t. It returns false if l was already present.
func (s *Sets) add(t tier.Tier, l string) bool {
	if s.index[t] == nil {
		s.index[t] = make(map[string]struct{})
	}
	if _, dup := s.index[t][l]; dup {
		s.Duplicates = append(s.Duplicates, Duplicate{Tier: t, Label: l})
		return false
	}
	s.index[t][l] = struct{}{}
	s.labels[t] = append(s.labels[t], l)
	return true
}

// Labels returns the labels of tier t in input order.
// The returned slice must not be modified.
func (s Sets) Labels(t tier.Tier) []string {
	if !t.Valid() {
		return nil
	}
	return s.labels[t]
}

// Contains reports whether label is present in tier t.
func (s Sets) Contains(t tier.Tier, label string) bool {
	if !t.Valid() {
		return false
	}
	_, ok := s.index[t][label]
	return ok
}

// Len returns the total number of labels across all tiers.
func (s Sets) Len() int {
	n := 0
	for _, l := range s.labels {
		n += len(l)
	}
	return n
}

// Equal reports whether both parses hold the same labels in the same order.
func (s Sets) Equal(o Sets) bool {
	for _, t := range tier.All {
		if !slices.Equal(s.labels[t], o.labels[t]) {
			return false
		}
	}
	return true
}
