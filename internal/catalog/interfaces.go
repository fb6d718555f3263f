// Package catalog defines the venue catalog storage contract and its sentinel
// errors. Concrete stores live in the csv, sqlite and postgres subpackages.
package catalog

import (
	"context"
	"errors"

	"github.com/reservedai/venuescout/pkg/types"
)

// Common storage errors.
var (
	// ErrNotFound is returned when a requested venue does not exist.
	ErrNotFound = errors.New("venue not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyCatalog is returned when the backing store holds no venues.
	// This is the one failure the recommendation engine propagates to callers.
	ErrEmptyCatalog = errors.New("venue catalog is empty")
)

// Store is the venue catalog contract. Load returns every venue with whatever
// embeddings are already persisted; PersistEmbedding writes one venue's vector
// back so warmup work is never repeated. Implementations must make
// PersistEmbedding idempotent.
type Store interface {
	// Load returns all venues in the catalog. Returns ErrEmptyCatalog when
	// the store is reachable but holds no records.
	Load(ctx context.Context) ([]types.Venue, error)

	// PersistEmbedding stores the embedding vector for a venue, recording
	// the model that produced it. Overwrites any previous vector.
	PersistEmbedding(ctx context.Context, venueID int, embedding []float64, model string) error

	// Close releases underlying resources.
	Close() error
}
