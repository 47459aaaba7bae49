// Package render provides the visual projections of the connection graph.
//
// # Overview
//
// Rendering is stateless: nothing here is stored between updates. The
// dashboard rebuilds the snapshot on every change and re-projects it.
//
//   - [Project] turns label boxes and edges into connectors (center to
//     center, with length and angle), the geometry a front-end needs to place
//     a line between two items.
//   - The [nodelink] subpackage renders a snapshot as a Graphviz node-link
//     diagram with one rank per tier.
//
// # Connectors
//
//	boxes := map[graph.Node]render.Box{
//	    {Tier: tier.Countries, Label: "US"}:  {X: 0, Y: 0, W: 80, H: 24},
//	    {Tier: tier.Regions, Label: "West"}: {X: 200, Y: 0, W: 80, H: 24},
//	}
//	conns := render.Project(boxes, g.Edges())
//
// [nodelink]: github.com/matzehuels/geoset/pkg/render/nodelink
package render
