// Package sqlitevec provides a SQLite-backed vector index using sqlite-vec,
// for single-binary deployments that don't run a Qdrant instance.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/vector"
)

// Driver implements vector.Index using SQLite with sqlite-vec.
type Driver struct {
	db         *sql.DB
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the sqlite-vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the embedding dimension, fixed at process start.
	Dimensions uint
}

// NewDriver creates a new SQLite vector index backed by sqlite-vec.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	// vec0 virtual tables use integer rowids, so record ids map through a
	// side table that also carries the payload.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			memory_id TEXT NOT NULL UNIQUE,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating memories table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS memory_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec vector index initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Driver{
		db:         db,
		dimensions: c.Dimensions,
		logger:     logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// CollectionExists always returns true: the backing tables are created when
// the driver is constructed and the local file has no transient
// unreachability to probe for.
func (d *Driver) CollectionExists(_ context.Context) bool {
	return true
}

// CreateCollection validates the dimension against the table created at
// construction time.
func (d *Driver) CreateCollection(_ context.Context, dimension uint) error {
	if dimension != d.dimensions {
		return fmt.Errorf("%w: collection dimension %d, configured %d",
			vector.ErrDimensionMismatch, dimension, d.dimensions)
	}
	return nil
}

// Upsert writes a record. If a record with the same id already exists, it is
// updated in place.
func (d *Driver) Upsert(ctx context.Context, rec vector.Record) error {
	if uint(len(rec.Vector)) != d.dimensions {
		return fmt.Errorf("%w: got %d, want %d",
			vector.ErrDimensionMismatch, len(rec.Vector), d.dimensions)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	embBlob := serializeFloat32(rec.Vector)
	createdAt := rec.Payload.Timestamp.Format(time.RFC3339)

	var existingRowID int64
	err = tx.QueryRowContext(ctx,
		`SELECT rowid FROM memories WHERE memory_id = ?`, rec.ID,
	).Scan(&existingRowID)

	switch err {
	case nil:
		// Record exists — update payload and embedding in place
		if _, err := tx.ExecContext(ctx,
			`UPDATE memories SET text = ?, created_at = ? WHERE rowid = ?`,
			rec.Payload.Text, createdAt, existingRowID,
		); err != nil {
			return fmt.Errorf("updating record %s: %w", rec.ID, err)
		}

		// vec0 does not support UPDATE; replace via DELETE + INSERT
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memory_embeddings WHERE rowid = ?`, existingRowID,
		); err != nil {
			return fmt.Errorf("deleting old embedding for %s: %w", rec.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memory_embeddings(rowid, embedding) VALUES (?, ?)`,
			existingRowID, embBlob,
		); err != nil {
			return fmt.Errorf("re-inserting embedding for %s: %w", rec.ID, err)
		}
	case sql.ErrNoRows:
		result, err := tx.ExecContext(ctx,
			`INSERT INTO memories(memory_id, text, created_at) VALUES (?, ?, ?)`,
			rec.ID, rec.Payload.Text, createdAt,
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", rec.ID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for %s: %w", rec.ID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memory_embeddings(rowid, embedding) VALUES (?, ?)`,
			rowID, embBlob,
		); err != nil {
			return fmt.Errorf("inserting embedding for %s: %w", rec.ID, err)
		}
	default:
		return fmt.Errorf("checking for existing record %s: %w", rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
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

	queryBlob := serializeFloat32(embedding)

	// KNN query via vec0 MATCH, then JOIN back for id and payload.
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			m.memory_id,
			m.text,
			m.created_at,
			me.distance
		FROM memory_embeddings me
		INNER JOIN memories m ON m.rowid = me.rowid
		WHERE me.embedding MATCH ?
			AND me.k = ?
		ORDER BY me.distance
	`, queryBlob, k)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var hits []vector.Hit
	for rows.Next() {
		var id, text, createdAt string
		var distance float64
		if err := rows.Scan(&id, &text, &createdAt, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		hit := vector.Hit{
			// Cosine distance in [0, 2]; similarity = 1 - distance.
			Score: float32(1.0 - distance),
		}
		hit.ID = id
		hit.Payload.Text = text
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			hit.Payload.Timestamp = parsed
		}

		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	d.logger.Debug("queried sqlite-vec",
		zap.Int("results", len(hits)),
	)

	return hits, nil
}

// Close releases the database handle.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Ensure Driver implements vector.Index
var _ vector.Index = (*Driver)(nil)
