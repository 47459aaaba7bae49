package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/incfile"
	"github.com/matzehuels/geoset/pkg/pipeline"
	"github.com/matzehuels/geoset/pkg/sink"
)

type fetchOpts struct {
	from   string
	output string
	prefix string
}

// fetchCommand creates the fetch command, which copies a bundle archived
// in MongoDB back into a directory.
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch <bundle-id | snapshot.json>",
		Short: "Write an archived bundle to a directory",
		Long: `Load a bundle stored by the mongo sink and write its set files.

The argument is either a bundle id as printed by "geoset generate", or a
snapshot file: its bundle id is derived from the snapshot hash and --prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "mongodb:// URI (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "file prefix the bundle was generated with")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, ref string, opts fetchOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	uri := firstNonEmpty(opts.from, c.Config.Sink.MongoURI)
	if !sink.IsMongoURI(uri) {
		return errors.New(errors.ErrCodeInvalidInput, "fetch needs a mongodb:// URI (--from or sink.mongo_uri)")
	}
	id, err := bundleRef(ref, firstNonEmpty(opts.prefix, c.Config.Export.Prefix))
	if err != nil {
		return err
	}
	prog.step("resolved bundle", "id", id)

	m, err := sink.NewMongo(ctx, sink.MongoOptions{
		URI:        uri,
		Database:   c.Config.Sink.Database,
		Collection: c.Config.Sink.Collection,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "open sink")
	}
	defer func() {
		if err := m.Close(context.Background()); err != nil {
			logger.Warn("close sink", "error", err)
		}
	}()

	doc, err := m.Load(ctx, id)
	if err != nil {
		return err
	}
	dir := firstNonEmpty(opts.output, c.Config.Export.OutputDir)
	if err := incfile.WriteDir(dir, &incfile.Bundle{Files: doc.Files}); err != nil {
		return err
	}

	printKeyValue("Bundle", doc.ID)
	printKeyValue("Generated", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	for _, f := range doc.Files {
		printFile(filepath.Join(dir, f.Name))
	}
	prog.done("Fetched", "id", doc.ID, "files", len(doc.Files))
	return nil
}

// bundleRef turns a fetch argument into a bundle id. Existing files and
// stdin are read as snapshots; anything else is taken as an id.
func bundleRef(ref, prefix string) (string, error) {
	if ref != stdinPath {
		if _, err := os.Stat(ref); err != nil {
			return ref, nil
		}
	}
	s, err := readSnapshot(ref)
	if err != nil {
		return "", err
	}
	hash, err := pipeline.Hash(s)
	if err != nil {
		return "", err
	}
	return sink.BundleID(sink.Meta{SnapshotHash: hash, Prefix: prefix}), nil
}
