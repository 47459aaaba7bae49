package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/snapshot"
)

// stdinPath reads a snapshot from standard input.
const stdinPath = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	format   string // output format: json, yaml, dot, svg
	output   string // output file; svg defaults to <input>.svg
	detailed bool   // annotate nodes with their link counts
	refresh  bool   // bypass the render cache
	noCache  bool   // disable the cache entirely
}

// renderCommand creates the render command for snapshot diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: pipeline.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <snapshot.json>",
		Short: "Render a snapshot as json, yaml, dot or svg",
		Long: `Render a snapshot file. Use "-" to read the snapshot from stdin.

The dot and svg formats draw one rank per tier with an arrow for every
connection. Rendered diagrams are cached by snapshot content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, yaml, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg for svg, stdout otherwise)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show link counts on diagram nodes")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats())

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := readSnapshot(input)
	if err != nil {
		return err
	}
	stats := s.Stats()
	prog.step("loaded snapshot", "labels", stats.Labels, "links", stats.Links)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spin := newSpinnerWithContext(ctx, "Rendering "+opts.format+"...")
	spin.Start()
	data, cached, err := runner.Render(ctx, s, pipeline.RenderOptions{
		Format:   opts.format,
		Detailed: opts.detailed,
		Refresh:  opts.refresh,
	})
	spin.Stop()
	if err != nil {
		return err
	}

	path := renderPath(opts.output, input, opts.format)
	if err := writeOutput(path, data); err != nil {
		return err
	}
	if path != "" {
		printStats(stats.Labels, stats.Links, cached)
		prog.done("Rendered", "format", opts.format, "cached", cached)
	}
	return nil
}

// renderPath picks the output file. Binary-ish svg output never goes to a
// terminal implicitly.
func renderPath(output, input, format string) string {
	if output != "" || format != pipeline.FormatSVG || input == stdinPath {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".svg"
}

// readSnapshot loads and validates a snapshot file, or stdin for "-".
func readSnapshot(path string) (*snapshot.Snapshot, error) {
	var r io.Reader = os.Stdin
	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open snapshot %s", path)
		}
		defer f.Close()
		r = f
	}
	s, err := snapshot.Read(r)
	if err != nil {
		return nil, err
	}
	if err := snapshot.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}
