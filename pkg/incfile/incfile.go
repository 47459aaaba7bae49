package incfile

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/snapshot"
	"github.com/matzehuels/geoset/pkg/tier"
)

// Set file names, without prefix.
const (
	FileCountries = "CCC.inc"
	FileRegions   = "RRR.inc"
	FileAreas     = "AAA.inc"
	FileEntities  = "CCCRRRAAA.inc"
	FileCCCRRR    = "CCCRRR.inc"
	FileRRRAAA    = "RRRAAA.inc"
)

// Options configures set file generation.
type Options struct {
	// Prefix is prepended to every file name, e.g. "INDUSTRY_".
	Prefix string
}

// File is one generated set file.
type File struct {
	Name    string `json:"name" bson:"name"`
	Content string `json:"content" bson:"content"`
}

// Bundle is the ordered set of files generated from one snapshot.
type Bundle struct {
	Files []File `json:"files" bson:"files"`
}

// Names returns the file names in generation order.
func (b *Bundle) Names() []string {
	names := make([]string, len(b.Files))
	for i, f := range b.Files {
		names[i] = f.Name
	}
	return names
}

// Get returns the file with the given name.
func (b *Bundle) Get(name string) (File, bool) {
	for _, f := range b.Files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

// Size returns the total content size in bytes.
func (b *Bundle) Size() int {
	n := 0
	for _, f := range b.Files {
		n += len(f.Content)
	}
	return n
}

type setDecl struct {
	file   string
	header string
}

var (
	declCountries = setDecl{FileCountries, "SET CCC(CCCRRRAAA) 'All countries'"}
	declRegions   = setDecl{FileRegions, "SET RRR(CCCRRRAAA) 'All regions'"}
	declAreas     = setDecl{FileAreas, "SET AAA(CCCRRRAAA) 'All areas'"}
	declEntities  = setDecl{FileEntities, "SET CCCRRRAAA 'All geographic entities'"}
	declCCCRRR    = setDecl{FileCCCRRR, "SET CCCRRR(CCC, RRR) 'Regions in countries'"}
	declRRRAAA    = setDecl{FileRRRAAA, "SET RRRAAA(RRR, AAA) 'Areas in regions'"}
)

// Generate builds the set files for s.
//
// The tier files list each tier's labels in snapshot order. CCCRRRAAA lists
// all labels, countries first, with labels repeated across tiers written
// once. The pair files list every connection of the respective tier.
func Generate(s *snapshot.Snapshot, opts Options) (*Bundle, error) {
	if strings.ContainsAny(opts.Prefix, `/\`) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "file prefix %q must not contain path separators", opts.Prefix)
	}
	if err := checkLabels(s); err != nil {
		return nil, err
	}

	var entities []string
	for _, t := range tier.All {
		for _, l := range s.Labels(t) {
			if !slices.Contains(entities, l) {
				entities = append(entities, l)
			}
		}
	}

	b := &Bundle{}
	add := func(d setDecl, entries []string) {
		b.Files = append(b.Files, File{
			Name:    opts.Prefix + d.file,
			Content: Format(d.header, entries),
		})
	}

	add(declCountries, elements(s.Labels(tier.Countries)))
	add(declRegions, elements(s.Labels(tier.Regions)))
	add(declAreas, elements(s.Labels(tier.Areas)))
	add(declEntities, elements(entities))
	add(declCCCRRR, pairs(s, tier.Countries))
	add(declRRRAAA, pairs(s, tier.Regions))
	return b, nil
}

func checkLabels(s *snapshot.Snapshot) error {
	for _, t := range tier.All {
		for _, l := range s.Labels(t) {
			if err := errors.ValidateLabel(l); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidLabel, err, "%s label", t)
			}
		}
	}
	return nil
}

func elements(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = Quote(l)
	}
	return out
}

func pairs(s *snapshot.Snapshot, t tier.Tier) []string {
	var out []string
	for _, from := range s.Labels(t) {
		for _, to := range s.Links(t, from) {
			out = append(out, Quote(from)+" . "+Quote(to))
		}
	}
	return out
}

// Quote returns label as a GAMS set element, quoted when needed.
func Quote(label string) string {
	switch {
	case errors.IsPlainElement(label):
		return label
	case strings.Contains(label, "'"):
		return `"` + label + `"`
	default:
		return "'" + label + "'"
	}
}

// Format renders a set declaration with its entries.
func Format(header string, entries []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n/\n")
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	sb.WriteString("/\n;\n")
	return sb.String()
}

// WriteDir writes every file of b into dir, creating it if needed.
func WriteDir(dir string, b *Bundle) error {
	if err := errors.ValidatePath(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, f := range b.Files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	return nil
}
