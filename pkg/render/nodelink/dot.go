package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/geoset/pkg/snapshot"
	"github.com/matzehuels/geoset/pkg/tier"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the tier name and link count to node labels.
	// When false, only the label is shown.
	Detailed bool
}

// nodeID qualifies a label with its tier so the same text in two tiers
// yields two nodes.
func nodeID(t tier.Tier, label string) string {
	return t.String() + "/" + label
}

// ToDOT converts a snapshot to Graphviz DOT format.
// Each tier is placed on its own rank, countries at the top. Labels without
// any connection are drawn dashed on a grey fill.
func ToDOT(s *snapshot.Snapshot, opts Options) string {
	connected := connectedSet(s)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")

	for _, t := range tier.All {
		labels := s.Labels(t)
		if len(labels) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph %q {\n    rank=same;\n", "tier_"+t.String())
		for _, l := range labels {
			id := nodeID(t, l)
			text := fmtLabel(t, l, len(s.Links(t, l)), opts.Detailed)
			attrs := fmtAttrs(text, connected[id])
			fmt.Fprintf(&buf, "    %q [%s];\n", id, strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, link := range s.AllLinks() {
		next, _ := link.Tier.Next()
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(link.Tier, link.From), nodeID(next, link.To))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func connectedSet(s *snapshot.Snapshot) map[string]bool {
	out := make(map[string]bool)
	for _, link := range s.AllLinks() {
		next, _ := link.Tier.Next()
		out[nodeID(link.Tier, link.From)] = true
		out[nodeID(next, link.To)] = true
	}
	return out
}

func fmtLabel(t tier.Tier, label string, links int, detailed bool) string {
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\ntier: %s\nlinks: %d", label, t, links)
}

func fmtAttrs(label string, connected bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !connected {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag to a zero-origin viewBox with
// explicit width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
