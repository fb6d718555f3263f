// Package sqlite implements the venue catalog on SQLite using the pure-Go
// modernc.org/sqlite driver, so deployments need no CGO toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/reservedai/venuescout/internal/catalog"
	"github.com/reservedai/venuescout/pkg/types"
)

// Store implements catalog.Store backed by a SQLite database file.
// Embeddings live in their own table keyed by venue ID, serialized as
// little-endian float64 BLOBs.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if necessary) the venue database under dataPath
// and ensures the schema exists.
func NewStore(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "venuescout.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an existing connection, running migrations. Used by
// tests with in-memory databases.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS venues (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			neighborhood TEXT NOT NULL DEFAULT '',
			cuisine TEXT NOT NULL DEFAULT '',
			pricing TEXT NOT NULL DEFAULT '',
			rag_text TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS venue_embeddings (
			venue_id INTEGER PRIMARY KEY REFERENCES venues(id),
			embedding BLOB NOT NULL,
			dimension INTEGER NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Load returns all venues joined with their cached embeddings.
func (s *Store) Load(ctx context.Context) ([]types.Venue, error) {
	query := `
		SELECT v.id, v.name, v.address, v.neighborhood, v.cuisine, v.pricing, v.rag_text,
		       e.embedding, e.dimension
		FROM venues v
		LEFT JOIN venue_embeddings e ON e.venue_id = v.id
		ORDER BY v.id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	var venues []types.Venue
	for rows.Next() {
		var v types.Venue
		var embeddingBytes []byte
		var dimension sql.NullInt64

		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Neighborhood, &v.Cuisine,
			&v.Pricing, &v.RAGText, &embeddingBytes, &dimension); err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}

		if len(embeddingBytes) > 0 && dimension.Valid {
			emb, err := deserializeEmbedding(embeddingBytes, int(dimension.Int64))
			if err != nil {
				return nil, fmt.Errorf("venue %d: %w", v.ID, err)
			}
			v.Embedding = emb
		}

		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venues: %w", err)
	}

	if len(venues) == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	return venues, nil
}

// PersistEmbedding stores the embedding vector for a venue with upsert
// semantics, so warmup can safely re-run.
func (s *Store) PersistEmbedding(ctx context.Context, venueID int, embedding []float64, model string) error {
	if venueID <= 0 {
		return fmt.Errorf("%w: venue ID must be positive", catalog.ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", catalog.ErrInvalidInput)
	}
	if model == "" {
		return fmt.Errorf("%w: model is required", catalog.ErrInvalidInput)
	}

	query := `
		INSERT INTO venue_embeddings (venue_id, embedding, dimension, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(venue_id) DO UPDATE SET
			embedding = excluded.embedding,
			dimension = excluded.dimension,
			model = excluded.model,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query, venueID, serializeEmbedding(embedding), len(embedding), model)
	if err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
}

// Import inserts venues into the catalog, replacing any record with the same
// ID. Embeddings carried on the venues are persisted too. Used to bootstrap a
// fresh database from a CSV export.
func (s *Store) Import(ctx context.Context, venues []types.Venue, model string) error {
	if len(venues) == 0 {
		return fmt.Errorf("%w: no venues to import", catalog.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, v := range venues {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO venues (id, name, address, neighborhood, cuisine, pricing, rag_text)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				address = excluded.address,
				neighborhood = excluded.neighborhood,
				cuisine = excluded.cuisine,
				pricing = excluded.pricing,
				rag_text = excluded.rag_text
		`, v.ID, v.Name, v.Address, v.Neighborhood, v.Cuisine, v.Pricing, v.RAGText)
		if err != nil {
			return fmt.Errorf("failed to import venue %d: %w", v.ID, err)
		}

		if v.HasEmbedding() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO venue_embeddings (venue_id, embedding, dimension, model)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(venue_id) DO UPDATE SET
					embedding = excluded.embedding,
					dimension = excluded.dimension,
					model = excluded.model,
					updated_at = CURRENT_TIMESTAMP
			`, v.ID, serializeEmbedding(v.Embedding), len(v.Embedding), model)
			if err != nil {
				return fmt.Errorf("failed to import embedding for venue %d: %w", v.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Count returns the number of venues in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// serializeEmbedding converts a float64 slice to little-endian bytes.
func serializeEmbedding(embedding []float64) []byte {
	buf := make([]byte, len(embedding)*8)
	for i, v := range embedding {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// deserializeEmbedding converts little-endian bytes back to a float64 slice.
// dimension validates the buffer size.
func deserializeEmbedding(buf []byte, dimension int) ([]float64, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", dimension)
	}
	if len(buf) != dimension*8 {
		return nil, fmt.Errorf("embedding size mismatch: expected %d bytes, got %d", dimension*8, len(buf))
	}

	embedding := make([]float64, dimension)
	for i := 0; i < dimension; i++ {
		embedding[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return embedding, nil
}

// Compile-time assertion.
var _ catalog.Store = (*Store)(nil)
