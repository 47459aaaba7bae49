// Package nodelink renders a snapshot as a node-link diagram.
//
// Labels become boxes, connections become arrows, and each tier sits on its
// own rank (countries at the top, areas at the bottom):
//
//	dot := nodelink.ToDOT(s, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Rendering uses [github.com/goccy/go-graphviz] in process.
package nodelink
