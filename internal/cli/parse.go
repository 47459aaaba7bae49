package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoset/pkg/dashboard"
	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/selection"
	"github.com/matzehuels/geoset/pkg/snapshot"
	"github.com/matzehuels/geoset/pkg/tier"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	inputs   [tier.Count]string
	connects []string
	format   string
	output   string
}

// parseCommand creates the parse command: a non-interactive dashboard run.
// Each --connect is applied as two clicks, so the usual adjacency rules
// and the configured edge policy apply.
func (c *CLI) parseCommand() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Build a snapshot from labels and connections",
		Long: `Parse the three tier inputs, apply connections and print the snapshot.

Each --connect takes two labels separated by a colon. A label may be
qualified with its tier when it appears in more than one:

  geoset parse --countries "DK, DE" --regions "DK1, DK2" \
    --connect DK:DK1 --connect countries/DK:DK2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSnapshotFormat(opts.format); err != nil {
				return err
			}
			return c.runParse(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputs[tier.Countries], "countries", "", "comma-separated country labels")
	cmd.Flags().StringVar(&opts.inputs[tier.Regions], "regions", "", "comma-separated region labels")
	cmd.Flags().StringVar(&opts.inputs[tier.Areas], "areas", "", "comma-separated area labels")
	cmd.Flags().StringArrayVarP(&opts.connects, "connect", "c", nil, "connection a:b (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatJSON, "output format: json, yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(pipeline.FormatJSON, pipeline.FormatYAML))

	return cmd
}

func (c *CLI) runParse(ctx context.Context, opts parseOpts) error {
	logger := loggerFromContext(ctx)

	dopts, err := c.editorOptions()
	if err != nil {
		return err
	}
	d := dashboard.New(dopts)
	if err := d.SetInputs(opts.inputs); err != nil {
		return err
	}
	for _, dup := range d.Sets().Duplicates {
		logger.Warn("duplicate label dropped", "tier", dup.Tier, "label", dup.Label)
	}

	for _, conn := range opts.connects {
		if err := connect(d, conn); err != nil {
			return err
		}
		logger.Debug("connected", "connection", conn)
	}

	text, err := formatSnapshot(d.Snapshot(), opts.format)
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, []byte(text)); err != nil {
		return err
	}
	if opts.output != "" && opts.format == pipeline.FormatJSON {
		printNextStep("Generate set files", "geoset generate "+opts.output)
	}
	return nil
}

// connect applies one "a:b" connection as a pair of clicks.
func connect(d *dashboard.Dashboard, conn string) error {
	a, b, ok := strings.Cut(conn, ":")
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "connection %q: want a:b", conn)
	}
	sets := d.Sets()
	la, ta, err := resolveLabel(sets, a)
	if err != nil {
		return err
	}
	lb, tb, err := resolveLabel(sets, b)
	if err != nil {
		return err
	}

	if res := d.Click(la, ta); res.Outcome != selection.OutcomeArmed {
		return fmt.Errorf("connection %q: %w", conn, res.Err)
	}
	res := d.Click(lb, tb)
	switch res.Outcome {
	case selection.OutcomeConnected:
		return nil
	case selection.OutcomeDisarmed:
		return errors.New(errors.ErrCodeInvalidInput, "connection %q: both ends are the same label", conn)
	}
	return res.Err
}

// resolveLabel turns "tier/label" or a bare label into a label and tier.
// A bare label must belong to exactly one tier.
func resolveLabel(sets label.Sets, ref string) (string, tier.Tier, error) {
	if name, l, ok := strings.Cut(ref, "/"); ok {
		t, err := tier.Parse(strings.TrimSpace(name))
		if err != nil {
			return "", 0, err
		}
		l = label.Normalize(l)
		if !sets.Contains(t, l) {
			return "", 0, errors.New(errors.ErrCodeInvalidLabel, "no %s label %q", t, l)
		}
		return l, t, nil
	}

	l := label.Normalize(ref)
	var found []tier.Tier
	for _, t := range tier.All {
		if sets.Contains(t, l) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return "", 0, errors.New(errors.ErrCodeInvalidLabel, "unknown label %q", l)
	case 1:
		return l, found[0], nil
	}
	return "", 0, errors.New(errors.ErrCodeInvalidLabel, "label %q is in %s and %s; qualify it as tier/label", l, found[0], found[1])
}

// validateSnapshotFormat accepts the textual snapshot formats.
func validateSnapshotFormat(format string) error {
	if format != pipeline.FormatJSON && format != pipeline.FormatYAML {
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want json or yaml)", format)
	}
	return nil
}

func formatSnapshot(s *snapshot.Snapshot, format string) (string, error) {
	if format == pipeline.FormatYAML {
		return snapshot.ExportYAML(s)
	}
	text, err := snapshot.Export(s)
	if err != nil {
		return "", err
	}
	return text + "\n", nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	printSuccess("Wrote %s", path)
	return nil
}
