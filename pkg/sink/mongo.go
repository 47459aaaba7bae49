package sink

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/incfile"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "geoset"
	DefaultCollection = "bundles"
)

// MongoOptions configures the MongoDB sink.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Mongo archives bundles in a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	copts := options.Client().ApplyURI(opts.URI).SetServerSelectionTimeout(opts.Timeout)
	client, err := mongo.Connect(ctx, copts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Write stores b under BundleID(meta), replacing an earlier export of the
// same snapshot and prefix, and returns the id. Bundles without a snapshot
// hash get a fresh ObjectID.
func (m *Mongo) Write(ctx context.Context, b *incfile.Bundle, meta Meta) (string, error) {
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	id := BundleID(meta)
	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	doc := Document{ID: id, Meta: meta, Files: b.Files}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return "", fmt.Errorf("store bundle: %w", err)
	}
	return id, nil
}

// Load returns the bundle stored under id.
func (m *Mongo) Load(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "no bundle %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}
	return &doc, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Loader = (*Mongo)(nil)
