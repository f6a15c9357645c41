// Package qdrant provides a Qdrant-backed vector index driver using the
// official gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/papercomputeco/kin/pkg/vector"
)

// Driver implements vector.Index against a Qdrant instance.
type Driver struct {
	client     *qdrant.Client
	collection string
	dimensions uint
	logger     *zap.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Host is the Qdrant host (e.g. "localhost").
	Host string

	// Port is the Qdrant gRPC port. Defaults to 6334.
	Port int

	// APIKey authenticates against Qdrant cloud. Empty for local instances.
	APIKey string

	// UseTLS enables TLS, required for Qdrant cloud.
	UseTLS bool

	// CollectionName is the collection holding memory records.
	// Defaults to vector.DefaultCollectionName.
	CollectionName string

	// Dimensions is the embedding dimension, fixed at process start from a
	// sample embedding.
	Dimensions uint
}

// NewDriver creates a new Qdrant vector index driver.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	port := c.Port
	if port == 0 {
		port = 6334
	}

	collection := c.CollectionName
	if collection == "" {
		collection = vector.DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	logger.Info("connected to Qdrant",
		zap.String("host", c.Host),
		zap.Int("port", port),
		zap.String("collection", collection),
		zap.Uint("dimensions", c.Dimensions),
	)

	return &Driver{
		client:     client,
		collection: collection,
		dimensions: c.Dimensions,
		logger:     logger,
		sleep:      time.Sleep,
	}, nil
}

// CollectionExists probes for the collection with bounded retries. Returns
// false after exhausting retries; unreachability is never surfaced as an
// error from this probe.
func (d *Driver) CollectionExists(ctx context.Context) bool {
	for attempt := 1; attempt <= vector.ProbeAttempts; attempt++ {
		exists, err := d.client.CollectionExists(ctx, d.collection)
		if err == nil {
			return exists
		}

		d.logger.Warn("could not reach Qdrant, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", vector.ProbeAttempts),
			zap.Error(err),
		)

		if attempt < vector.ProbeAttempts {
			d.sleep(time.Duration(attempt) * vector.ProbeBackoff)
		}
	}

	d.logger.Error("failed to contact Qdrant, treating collection as missing",
		zap.Int("attempts", vector.ProbeAttempts),
	)

	return false
}

// CreateCollection creates the collection with cosine distance.
func (d *Driver) CreateCollection(ctx context.Context, dimension uint) error {
	if dimension != d.dimensions {
		return fmt.Errorf("%w: collection dimension %d, configured %d",
			vector.ErrDimensionMismatch, dimension, d.dimensions)
	}

	err := d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", d.collection, err)
	}

	d.logger.Info("created Qdrant collection",
		zap.String("collection", d.collection),
		zap.Uint("dimensions", dimension),
	)

	return nil
}

// Upsert writes a record, replacing any record with the same id.
func (d *Driver) Upsert(ctx context.Context, rec vector.Record) error {
	if uint(len(rec.Vector)) != d.dimensions {
		return fmt.Errorf("%w: got %d, want %d",
			vector.ErrDimensionMismatch, len(rec.Vector), d.dimensions)
	}

	_, err := d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(rec.ID),
				Vectors: qdrant.NewVectors(rec.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"text":      rec.Payload.Text,
					"timestamp": rec.Payload.Timestamp.Format(time.RFC3339),
				}),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upserting point %s: %w", rec.ID, err)
	}

	d.logger.Debug("upserted memory record",
		zap.String("id", rec.ID),
	)

	return nil
}

// Search returns the k nearest records ordered by descending similarity.
func (d *Driver) Search(ctx context.Context, embedding []float32, k int) ([]vector.Hit, error) {
	if k <= 0 {
		k = 5
	}

	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		// A collection that does not exist yet is an empty index, not a
		// search failure.
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("querying collection %q: %w", d.collection, err)
	}

	hits := make([]vector.Hit, 0, len(points))
	for _, p := range points {
		hit := vector.Hit{Score: p.GetScore()}
		hit.ID = p.GetId().GetUuid()

		payload := p.GetPayload()
		if payload != nil {
			hit.Payload.Text = payload["text"].GetStringValue()
			if ts := payload["timestamp"].GetStringValue(); ts != "" {
				if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
					hit.Payload.Timestamp = parsed
				}
			}
		}

		hits = append(hits, hit)
	}

	d.logger.Debug("queried Qdrant",
		zap.Int("results", len(hits)),
	)

	return hits, nil
}

// Close releases the underlying gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// Ensure Driver implements vector.Index
var _ vector.Index = (*Driver)(nil)
