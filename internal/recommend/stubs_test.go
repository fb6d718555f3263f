package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/reservedai/venuescout/internal/catalog"
	"github.com/reservedai/venuescout/pkg/types"
)

// charFreqEmbedder produces deterministic embeddings from letter frequencies,
// so textual similarity carries over to cosine similarity without a network.
type charFreqEmbedder struct {
	failFor func(text string) bool
}

func (e *charFreqEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.failFor != nil && e.failFor(text) {
		return nil, errors.New("embedder down")
	}
	var vec [26]float32
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			vec[r-'a']++
		case r >= 'A' && r <= 'Z':
			vec[r-'A']++
		}
	}
	return vec[:], nil
}

func (e *charFreqEmbedder) GetModel() string { return "char-freq-test" }

// fixedEmbedder returns a preset vector per exact input text, and a shared
// fallback vector for anything else.
type fixedEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
}

func (e *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func (e *fixedEmbedder) GetModel() string { return "fixed-test" }

// stubGenerator returns a canned completion or a canned error.
type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) Complete(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *stubGenerator) GetModel() string { return "stub-test" }

// stubJSONGenerator adds a forced-JSON path so shortlister tests can verify
// the capability upgrade.
type stubJSONGenerator struct {
	stubGenerator
	jsonResponse string
	jsonErr      error
	jsonPrompts  []string
}

func (g *stubJSONGenerator) CompleteJSON(_ context.Context, prompt string) (string, error) {
	g.jsonPrompts = append(g.jsonPrompts, prompt)
	if g.jsonErr != nil {
		return "", g.jsonErr
	}
	return g.jsonResponse, nil
}

// memStore is an in-memory catalog.Store recording persisted embeddings.
type memStore struct {
	mu        sync.Mutex
	venues    []types.Venue
	loadErr   error
	persisted map[int][]float64
}

func newMemStore(venues []types.Venue) *memStore {
	return &memStore{venues: venues, persisted: make(map[int][]float64)}
}

func (s *memStore) Load(context.Context) ([]types.Venue, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if len(s.venues) == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	out := make([]types.Venue, len(s.venues))
	copy(out, s.venues)
	return out, nil
}

func (s *memStore) PersistEmbedding(_ context.Context, venueID int, embedding []float64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persisted[venueID] = embedding
	for i := range s.venues {
		if s.venues[i].ID == venueID {
			s.venues[i].Embedding = embedding
		}
	}
	return nil
}

func (s *memStore) Close() error { return nil }
