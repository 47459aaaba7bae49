// Package pipeline runs the export stages shared by the CLI, the TUI and the
// server: set file generation and diagram rendering, both cached by
// snapshot hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	bundle, hit, err := runner.Generate(ctx, s, pipeline.GenerateOptions{})
//	svg, hit, err := runner.Render(ctx, s, pipeline.RenderOptions{Format: pipeline.FormatSVG})
//
// Results depend only on the snapshot's canonical JSON and the options, so
// the cache key is the SHA-256 of the former plus the latter.
package pipeline

import (
	"slices"
	"strings"

	"github.com/matzehuels/geoset/pkg/errors"
)

// Output formats for snapshots and diagrams.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatYAML, FormatDOT, FormatSVG}

// ValidateFormat checks that format is supported. Formats are case-sensitive.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "text/vnd.graphviz"
	}
}

// GenerateOptions configures set file generation.
type GenerateOptions struct {
	// Prefix is prepended to every generated file name.
	Prefix string
	// Refresh bypasses the cache lookup (the result is still stored).
	Refresh bool
}

// RenderOptions configures snapshot rendering.
type RenderOptions struct {
	Format   string
	Detailed bool
	Refresh  bool
}
