// Package pkg provides the core libraries for geoset, an editor for
// three-tier geographic hierarchies (countries, regions, areas) that exports
// Balmorel set files.
//
// # Overview
//
// The user types comma-separated labels into one input per tier, then draws
// connections between labels of adjacent tiers with a two-click gesture. Every
// change rebuilds a snapshot, the ordered mapping that is exported as JSON and
// turned into .inc files.
//
// # Architecture
//
// The data flow through geoset:
//
//	three raw inputs
//	       ↓
//	  [label] parse into ordered per-tier sets
//	       ↓
//	  [graph] stored edges + [selection] click state machine
//	       ↓
//	  [snapshot] rebuilt mapping (canonical JSON / YAML)
//	       ↓
//	  [backend] → [pipeline] → [incfile] set files → [sink] directory or MongoDB
//
// [dashboard] owns one editor's state and ties these together. The CLI, the
// terminal dashboard and the HTTP server all drive a [dashboard.Dashboard].
//
// # Main Packages
//
// ## Editor
//
// [tier] - The three tiers and the adjacency rule.
//
// [label] - Input parsing and normalization, duplicate policy.
//
// [graph] - Edge store with latent or pruned dangling edges, and the
// snapshot rebuild.
//
// [selection] - The idle/armed click state machine.
//
// [snapshot] - The export value and its wire codecs.
//
// [dashboard] - Explicit application state with status line and export.
//
// [render] - Connector geometry, and [render/nodelink] DOT and SVG diagrams.
//
// ## Export
//
// [incfile] - Balmorel set file generation.
//
// [pipeline] - Cached generation and rendering.
//
// [backend] - Local and HTTP export backends.
//
// [sink] - Directory and MongoDB bundle sinks.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches keyed by snapshot hash.
//
// [session] - In-memory dashboard sessions for the server.
//
// [config] - TOML configuration with validation.
//
// [errors] - Coded errors shared by every front-end.
//
// [observability], [metrics] - Hooks and their Prometheus implementation.
//
// [httputil] - Retrying HTTP client for the remote backend.
//
// [buildinfo] - Version information.
package pkg
