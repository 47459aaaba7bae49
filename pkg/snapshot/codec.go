package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/tier"
)

// MarshalJSON writes the snapshot as compact JSON with canonical key order.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range tier.All {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, t.String())
		buf.WriteString(":{")
		sec := s.tiers[t]
		for j, label := range sec.order {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeString(&buf, label)
			buf.WriteString(":[")
			for k, target := range sec.links[label] {
				if k > 0 {
					buf.WriteByte(',')
				}
				writeString(&buf, target)
			}
			buf.WriteByte(']')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeString appends v as a JSON string. HTML characters are written as
// is, so "A&B" stays "A&B" in the exported text.
func writeString(buf *bytes.Buffer, v string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	buf.Truncate(buf.Len() - 1)
}

// UnmarshalJSON decodes the wire format, preserving key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	d, err := Read(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*s = *d
	return nil
}

// Export serializes the snapshot to its canonical textual form: JSON with
// two-space indentation, tiers in tier order and labels in insertion order.
// This is the text handed to the code-generation backend.
func Export(s *Snapshot) (string, error) {
	compact, err := s.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return "", fmt.Errorf("indent: %w", err)
	}
	return out.String(), nil
}

// ExportYAML serializes the snapshot to YAML with the same key order as
// [Export]. Labels are always emitted as strings.
func ExportYAML(s *Snapshot) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range tier.All {
		sec := s.tiers[t]
		tierNode := &yaml.Node{Kind: yaml.MappingNode}
		if len(sec.order) == 0 {
			tierNode.Style = yaml.FlowStyle
		}
		for _, label := range sec.order {
			seq := &yaml.Node{Kind: yaml.SequenceNode}
			if len(sec.links[label]) == 0 {
				seq.Style = yaml.FlowStyle
			}
			for _, target := range sec.links[label] {
				seq.Content = append(seq.Content, strNode(target))
			}
			tierNode.Content = append(tierNode.Content, strNode(label), seq)
		}
		root.Content = append(root.Content, strNode(t.String()), tierNode)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return buf.String(), nil
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// Decode parses the JSON wire format. See [Read].
func Decode(data []byte) (*Snapshot, error) {
	return Read(bytes.NewReader(data))
}

// Read parses the JSON wire format from r, preserving key order.
//
// Missing tiers decode as empty. Unknown tier keys, non-string targets and
// malformed JSON return an INVALID_FORMAT error. Read does not check that
// targets exist; use [Validate] for that.
func Read(r io.Reader) (*Snapshot, error) {
	dec := json.NewDecoder(r)
	s := New()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, err
		}
		t, err := tier.Parse(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unknown top-level key %q", key)
		}
		if err := readSection(dec, s, t); err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return s, nil
}

func readSection(dec *json.Decoder, s *Snapshot, t tier.Tier) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		label, err := stringToken(dec)
		if err != nil {
			return err
		}
		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s.%s: expected a list of labels", t, label)
		}
		s.AddLabel(t, label)
		for _, target := range targets {
			s.Append(t, label, target)
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.New(errors.ErrCodeInvalidFormat, "decode snapshot: expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	v, ok := tok.(string)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "decode snapshot: expected key, got %v", tok)
	}
	return v, nil
}

// Validate checks that every link points from one tier to a label present
// in the next tier, and that areas carry no outgoing links.
func Validate(s *Snapshot) error {
	for _, t := range tier.All {
		next, hasNext := t.Next()
		sec := s.tiers[t]
		for _, from := range sec.order {
			targets := sec.links[from]
			if len(targets) == 0 {
				continue
			}
			if !hasNext {
				return errors.New(errors.ErrCodeNonAdjacentTier, "%s %q cannot have connections", t, from)
			}
			for _, to := range targets {
				if !slices.Contains(s.tiers[next].order, to) {
					return errors.New(errors.ErrCodeInvalidFormat, "%s %q links to unknown %s label %q", t, from, next, to)
				}
			}
		}
	}
	return nil
}
