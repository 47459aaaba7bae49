// Package sink stores generated set file bundles.
//
// A [Dir] sink writes the .inc files into a directory, the layout Balmorel
// expects. A [Mongo] sink archives each bundle as one document, so a server
// deployment keeps every export without a shared filesystem.
//
//	s, err := sink.Open(ctx, "Output", sink.MongoOptions{})
//	loc, err := s.Write(ctx, bundle, sink.Meta{SnapshotHash: hash})
package sink

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/geoset/pkg/incfile"
)

// Meta describes the snapshot a bundle was generated from.
type Meta struct {
	SnapshotHash string    `json:"snapshot_hash" bson:"snapshot_hash"`
	Prefix       string    `json:"prefix,omitempty" bson:"prefix,omitempty"`
	Snapshot     string    `json:"snapshot,omitempty" bson:"snapshot,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Document is the stored form of a bundle.
type Document struct {
	ID    string `json:"id" bson:"_id"`
	Meta  `bson:",inline"`
	Files []incfile.File `json:"files" bson:"files"`
}

// BundleID returns the id a bundle generated from meta is stored under:
// the snapshot hash, qualified by the file prefix when one is set. It is
// empty when meta carries no hash.
func BundleID(meta Meta) string {
	if meta.SnapshotHash == "" || meta.Prefix == "" {
		return meta.SnapshotHash
	}
	return meta.SnapshotHash + ":" + meta.Prefix
}

// Sink receives generated bundles.
type Sink interface {
	// Write stores b and returns where it went (a directory or document id).
	Write(ctx context.Context, b *incfile.Bundle, meta Meta) (string, error)
	Close(ctx context.Context) error
}

// Loader is a Sink that can return stored bundles by id.
type Loader interface {
	Sink
	Load(ctx context.Context, id string) (*Document, error)
}

// IsMongoURI reports whether target names a MongoDB deployment.
func IsMongoURI(target string) bool {
	return strings.HasPrefix(target, "mongodb://") || strings.HasPrefix(target, "mongodb+srv://")
}

// Open returns a Mongo sink for MongoDB URIs and a Dir sink otherwise.
func Open(ctx context.Context, target string, mopts MongoOptions) (Sink, error) {
	if IsMongoURI(target) {
		mopts.URI = target
		return NewMongo(ctx, mopts)
	}
	return NewDir(target)
}
