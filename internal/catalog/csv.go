package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/reservedai/venuescout/pkg/types"
)

// CSVStore implements Store on a venue CSV export. Embeddings are cached in a
// companion file next to the source (<base>_with_embeddings.csv) with the
// vector serialized as a JSON array, so a warmed catalog survives restarts
// without touching the original export.
type CSVStore struct {
	path          string
	companionPath string

	mu     sync.Mutex
	venues []types.Venue // loaded rows, kept for companion rewrites
}

// Expected CSV header. The embedding column is optional in the source file
// and always present in the companion file.
var csvHeader = []string{"id", "name", "address", "neighborhood", "cuisine", "pricing", "rag_text", "embedding"}

// NewCSVStore creates a store reading from path. The file is not opened until
// Load.
func NewCSVStore(path string) *CSVStore {
	base := strings.TrimSuffix(path, ".csv")
	return &CSVStore{
		path:          path,
		companionPath: base + "_with_embeddings.csv",
	}
}

// Load reads the companion file when present, otherwise the source export.
func (s *CSVStore) Load(ctx context.Context) ([]types.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path
	if _, err := os.Stat(s.companionPath); err == nil {
		path = s.companionPath
	}

	venues, err := readVenueCSV(path)
	if err != nil {
		return nil, err
	}
	if len(venues) == 0 {
		return nil, ErrEmptyCatalog
	}

	s.venues = venues

	// Callers get their own copy; the cached slice backs companion rewrites.
	out := make([]types.Venue, len(venues))
	copy(out, venues)
	return out, nil
}

// PersistEmbedding updates the in-memory record and rewrites the companion
// file. The model parameter is accepted for interface parity; the CSV format
// does not record it.
func (s *CSVStore) PersistEmbedding(ctx context.Context, venueID int, embedding []float64, model string) error {
	if venueID <= 0 {
		return fmt.Errorf("%w: venue ID must be positive", ErrInvalidInput)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding vector cannot be empty", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.venues) == 0 {
		return fmt.Errorf("%w: catalog not loaded", ErrInvalidInput)
	}

	found := false
	for i := range s.venues {
		if s.venues[i].ID == venueID {
			s.venues[i].Embedding = embedding
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}

	return writeVenueCSV(s.companionPath, s.venues)
}

// Close is a no-op; the store holds no open handles between calls.
func (s *CSVStore) Close() error {
	return nil
}

func readVenueCSV(path string) ([]types.Venue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if len(records) < 1 {
		return nil, ErrEmptyCatalog
	}

	// Map header names to positions so column order in exports is flexible.
	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["name"]; !ok {
		return nil, fmt.Errorf("%w: catalog file has no name column", ErrInvalidInput)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var venues []types.Venue
	for rowNum, row := range records[1:] {
		v := types.Venue{
			Name:         field(row, "name"),
			Address:      field(row, "address"),
			Neighborhood: field(row, "neighborhood"),
			Cuisine:      field(row, "cuisine"),
			Pricing:      field(row, "pricing"),
			RAGText:      field(row, "rag_text"),
		}
		if v.Name == "" {
			continue
		}

		if idStr := field(row, "id"); idStr != "" {
			id, err := strconv.Atoi(idStr)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d has non-numeric id %q", ErrInvalidInput, rowNum+2, idStr)
			}
			v.ID = id
		} else {
			v.ID = rowNum + 1
		}

		if embStr := field(row, "embedding"); embStr != "" {
			var emb []float64
			if err := json.Unmarshal([]byte(embStr), &emb); err != nil {
				return nil, fmt.Errorf("%w: row %d has malformed embedding: %v", ErrInvalidInput, rowNum+2, err)
			}
			v.Embedding = emb
		}

		venues = append(venues, v)
	}
	return venues, nil
}

func writeVenueCSV(path string, venues []types.Venue) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create companion file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, v := range venues {
		embStr := ""
		if v.HasEmbedding() {
			data, err := json.Marshal(v.Embedding)
			if err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to marshal embedding for venue %d: %w", v.ID, err)
			}
			embStr = string(data)
		}
		row := []string{
			strconv.Itoa(v.ID), v.Name, v.Address, v.Neighborhood,
			v.Cuisine, v.Pricing, v.RAGText, embStr,
		}
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write venue %d: %w", v.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush companion file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close companion file: %w", err)
	}

	// Atomic swap so a crash mid-write never corrupts the cache.
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace companion file: %w", err)
	}
	return nil
}

// Compile-time assertion.
var _ Store = (*CSVStore)(nil)
