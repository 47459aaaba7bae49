package render

import (
	"math"

	"github.com/matzehuels/geoset/pkg/graph"
)

// Box is the on-screen rectangle of a label item. X and Y are the top-left
// corner.
type Box struct {
	X, Y float64
	W, H float64
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connector is a line between two item centers.
type Connector struct {
	Edge   graph.Edge
	From   Point
	To     Point
	Length float64
	Angle  float64 // radians, measured from the positive X axis
}

// Midpoint returns the point halfway along the connector, where a
// front-end anchors a rotated line of the given length.
func (c Connector) Midpoint() Point {
	return Point{X: (c.From.X + c.To.X) / 2, Y: (c.From.Y + c.To.Y) / 2}
}

// Connect builds the connector between two boxes.
func Connect(e graph.Edge, from, to Box) Connector {
	a, b := from.Center(), to.Center()
	dx, dy := b.X-a.X, b.Y-a.Y
	return Connector{
		Edge:   e,
		From:   a,
		To:     b,
		Length: math.Hypot(dx, dy),
		Angle:  math.Atan2(dy, dx),
	}
}

// Project returns one connector per edge whose endpoints both have a box,
// in edge order. Edges with a missing box are skipped.
func Project(boxes map[graph.Node]Box, edges []graph.Edge) []Connector {
	out := make([]Connector, 0, len(edges))
	for _, e := range edges {
		from, ok := boxes[e.From]
		if !ok {
			continue
		}
		to, ok := boxes[e.To]
		if !ok {
			continue
		}
		out = append(out, Connect(e, from, to))
	}
	return out
}

// Collector returns a graph.DrawFunc that records every drawn edge, and a
// function that projects the recorded edges onto boxes.
func Collector() (graph.DrawFunc, func(map[graph.Node]Box) []Connector) {
	var edges []graph.Edge
	draw := func(e graph.Edge) { edges = append(edges, e) }
	project := func(boxes map[graph.Node]Box) []Connector {
		return Project(boxes, edges)
	}
	return draw, project
}
