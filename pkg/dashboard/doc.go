// Package dashboard is the application state behind every geoset front-end.
//
// A [Dashboard] owns the three raw inputs, their current parse, the
// connection graph, the selection machine, the latest snapshot and the
// status line. Front-ends (the TUI, the HTTP server, `geoset parse`) only
// forward events:
//
//	d := dashboard.New(dashboard.Options{})
//	d.SetInput(tier.Countries, "US, UK")
//	d.SetInput(tier.Regions, "West, East")
//	d.Click("US", tier.Countries)
//	d.Click("West", tier.Regions)
//	d.Status() // {success "Connection made!"}
//
// Every input change and every completed connection triggers a full
// rebuild: reparse, then [graph.Graph.Rebuild] into a fresh snapshot.
//
// A Dashboard is not safe for concurrent use. The server serializes access
// per session; [Dashboard.ExportAsync] serializes the snapshot before it
// leaves the caller's goroutine.
package dashboard
