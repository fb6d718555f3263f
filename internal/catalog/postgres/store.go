// Package postgres implements the venue catalog on PostgreSQL via lib/pq.
// Embeddings are always stored as BYTEA; when the pgvector extension is
// installed they are mirrored into a vector column so future candidate
// retrieval can run as an indexed cosine-distance query.
package postgres

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log"
	"math"

	_ "github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/reservedai/venuescout/internal/catalog"
	"github.com/reservedai/venuescout/pkg/types"
)

// Store implements catalog.Store backed by PostgreSQL.
type Store struct {
	db                *sql.DB
	pgvectorAvailable bool
}

// NewStore connects to PostgreSQL with the given DSN, ensures the schema and
// detects whether pgvector is installed.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db}
	s.detectPgvector()
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB wraps an existing connection without running migrations or
// extension detection. Used by tests.
func NewStoreWithDB(db *sql.DB, pgvectorAvailable bool) *Store {
	return &Store{db: db, pgvectorAvailable: pgvectorAvailable}
}

func (s *Store) detectPgvector() {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM pg_extension WHERE extname = 'vector'`).Scan(&one)
	s.pgvectorAvailable = err == nil
	if !s.pgvectorAvailable {
		log.Printf("postgres: pgvector extension not found, embeddings stored as BYTEA only")
	}
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
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS venue_embeddings (
			venue_id INTEGER PRIMARY KEY REFERENCES venues(id),
			embedding BYTEA NOT NULL,
			dimension INTEGER NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if s.pgvectorAvailable {
		_, err := s.db.Exec(`ALTER TABLE venue_embeddings ADD COLUMN IF NOT EXISTS embedding_vec vector`)
		if err != nil {
			log.Printf("postgres: failed to add embedding_vec column, continuing BYTEA-only: %v", err)
			s.pgvectorAvailable = false
		}
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

// PersistEmbedding stores the embedding vector for a venue. The BYTEA column
// is always written; embedding_vec is written additionally when pgvector is
// available, falling back to BYTEA-only if that write fails.
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

	embeddingBytes := serializeEmbedding(embedding)

	if s.pgvectorAvailable {
		f32 := make([]float32, len(embedding))
		for i, v := range embedding {
			f32[i] = float32(v)
		}
		vec := pgvector.NewVector(f32)

		query := `
			INSERT INTO venue_embeddings (venue_id, embedding, dimension, model, embedding_vec, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
			ON CONFLICT(venue_id) DO UPDATE SET
				embedding = excluded.embedding,
				dimension = excluded.dimension,
				model = excluded.model,
				embedding_vec = excluded.embedding_vec,
				updated_at = CURRENT_TIMESTAMP
		`
		_, err := s.db.ExecContext(ctx, query, venueID, embeddingBytes, len(embedding), model, vec)
		if err == nil {
			return nil
		}
		log.Printf("postgres: failed to store embedding_vec (falling back to BYTEA only): %v", err)
	}

	query := `
		INSERT INTO venue_embeddings (venue_id, embedding, dimension, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(venue_id) DO UPDATE SET
			embedding = excluded.embedding,
			dimension = excluded.dimension,
			model = excluded.model,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, venueID, embeddingBytes, len(embedding), model); err != nil {
		return fmt.Errorf("failed to store embedding: %w", err)
	}
	return nil
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
