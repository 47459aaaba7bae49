package pipeline

import (
	"context"

	"github.com/matzehuels/geoset/pkg/render/nodelink"
	"github.com/matzehuels/geoset/pkg/snapshot"
)

// RenderSnapshot renders s in the given format without caching.
func RenderSnapshot(ctx context.Context, s *snapshot.Snapshot, opts RenderOptions) ([]byte, error) {
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, err
	}
	switch opts.Format {
	case FormatJSON:
		out, err := snapshot.Export(s)
		return []byte(out), err
	case FormatYAML:
		out, err := snapshot.ExportYAML(s)
		return []byte(out), err
	case FormatDOT:
		return []byte(nodelink.ToDOT(s, nodelink.Options{Detailed: opts.Detailed})), nil
	default:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(s, nodelink.Options{Detailed: opts.Detailed}))
	}
}
