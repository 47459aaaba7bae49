package cache

import "strings"

// Keyer derives cache keys.
type Keyer interface {
	// BundleKey is the key of the set files generated from a snapshot.
	BundleKey(snapshotHash string, opts BundleKeyOpts) string

	// RenderKey is the key of a rendered diagram of a snapshot.
	RenderKey(snapshotHash string, opts RenderKeyOpts) string
}

// BundleKeyOpts holds the generation options that change a bundle.
type BundleKeyOpts struct {
	Prefix string `json:"prefix,omitempty"`
}

// RenderKeyOpts holds the render options that change a diagram.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes the snapshot hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BundleKey returns "bundle:<sha256>".
func (DefaultKeyer) BundleKey(snapshotHash string, opts BundleKeyOpts) string {
	return hashKey("bundle", snapshotHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(snapshotHash string, opts RenderKeyOpts) string {
	return hashKey("render", snapshotHash, opts)
}

// KeyType returns the kind prefix of a key produced by a Keyer ("bundle",
// "render"), skipping any scope prefix. It is used to label cache metrics.
func KeyType(key string) string {
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[:i]
	}
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return key
}
