// Package graph provides the connection graph: the authoritative store of
// directed edges between labels of adjacent tiers.
//
// # Overview
//
// The graph is an adjacency list keyed by tier-qualified label ([Node]).
// Edges may only connect consecutive tiers, and they are always stored in
// the canonical direction from the lower tier to the higher one
// (countries → regions, regions → areas), whichever endpoint was clicked
// first:
//
//	g := graph.New(graph.PolicyLatent)
//	g.AddEdge("West", tier.Regions, "US", tier.Countries) // stored as US → West
//
// [Graph.AddEdge] returns a SAME_TIER error for two labels of one tier and a
// NON_ADJACENT_TIER error for a country and an area. Adding the same pair
// twice stores it once.
//
// # Rebuild
//
// Label sets are recreated on every input change. [Graph.Rebuild] projects
// the store onto the current parse: every present label gets an entry, and
// every stored edge whose endpoints both exist in the current parse is
// emitted into the [snapshot.Snapshot] and reported to the optional
// [DrawFunc].
//
// # Latent Edges
//
// Edges are keyed by label text, not by any stable object identity. When a
// label disappears from its input, edges touching it are skipped on
// rebuild. What happens to them is governed by [Policy]:
//
//   - [PolicyLatent]: skipped edges stay in the store and reappear as soon as
//     the label is typed again. This is the default.
//   - [PolicyPrune]: skipped edges are deleted during the rebuild.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
package graph
