package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// generateCommand creates the generate command, which turns a snapshot into
// Balmorel .inc set files through the configured export backend.
func (c *CLI) generateCommand() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "generate <snapshot.json>",
		Short: "Generate Balmorel set files from a snapshot",
		Long: `Generate CCC.inc, RRR.inc, AAA.inc, CCCRRRAAA.inc, CCCRRR.inc and
RRRAAA.inc from a snapshot. Use "-" to read the snapshot from stdin.

The local backend writes the files to --output, which may also be a
mongodb:// URI to archive the bundle. The http backend posts the snapshot
to a running "geoset serve".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory or mongodb:// URI (default from config)")
	cmd.Flags().StringVar(&f.sink, "sink", "", "bundle sink: dir, mongo (default from config)")
	cmd.Flags().StringVar(&f.backend, "backend", "", "export backend: local, http (default from config)")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "server URL for the http backend")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "prefix for generated file names")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "regenerate even when cached")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("sink", fixedCompletion("dir", "mongo"))
	_ = cmd.RegisterFlagCompletionFunc("backend", fixedCompletion("local", "http"))

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, input string, f exportFlags) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := readSnapshot(input)
	if err != nil {
		return err
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	prog.step("snapshot loaded", "path", input, "bytes", len(data))

	b, cleanup, err := c.newBackend(ctx, f)
	if err != nil {
		return err
	}
	defer cleanup()

	spin := newSpinnerWithContext(ctx, "Generating set files...")
	spin.Start()
	res, err := b.Generate(ctx, data)
	if err != nil {
		spin.StopWithError("Export failed")
		return err
	}
	spin.StopWithSuccess(fmt.Sprintf("Generated %d set files", len(res.Files)))
	dir := ""
	if info, err := os.Stat(res.Location); err == nil && info.IsDir() {
		dir = res.Location
	} else if res.Location != "" {
		printKeyValue("Location", res.Location)
	}
	for _, name := range res.Files {
		printFile(filepath.Join(dir, name))
	}
	stats := s.Stats()
	printStats(stats.Labels, stats.Links, res.Cached)
	prog.done("Exported", "hash", res.SnapshotHash[:min(12, len(res.SnapshotHash))], "files", len(res.Files), "cached", res.Cached)
	return nil
}
