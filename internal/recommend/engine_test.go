package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservedai/venuescout/internal/catalog"
	"github.com/reservedai/venuescout/pkg/types"
)

func TestEnsureEmbeddingsComputesOnlyMissing(t *testing.T) {
	store := newMemStore([]types.Venue{
		{ID: 1, Name: "Warm", RAGText: "already embedded", Embedding: []float64{1, 2}},
		{ID: 2, Name: "Cold", RAGText: "needs embedding"},
		{ID: 3, Name: "NoText"},
	})
	engine := NewEngine(store, &charFreqEmbedder{}, &stubGenerator{})

	venues, err := engine.EnsureEmbeddings(context.Background())
	require.NoError(t, err)
	require.Len(t, venues, 3)

	assert.Equal(t, []float64{1, 2}, venues[0].Embedding, "warm venue untouched")
	assert.True(t, venues[1].HasEmbedding())
	assert.False(t, venues[2].HasEmbedding(), "venue without rag text is skipped")

	assert.Len(t, store.persisted, 1)
	assert.Contains(t, store.persisted, 2)
}

func TestEnsureEmbeddingsEmbedderFailureSkipsVenue(t *testing.T) {
	store := newMemStore([]types.Venue{
		{ID: 1, Name: "Cold", RAGText: "needs embedding"},
		{ID: 2, Name: "Warm", RAGText: "fine", Embedding: []float64{1}},
	})
	embedder := &charFreqEmbedder{failFor: func(string) bool { return true }}
	engine := NewEngine(store, embedder, &stubGenerator{})

	venues, err := engine.EnsureEmbeddings(context.Background())
	require.NoError(t, err, "a single venue embedding failure is not fatal")
	assert.False(t, venues[0].HasEmbedding())
	assert.Empty(t, store.persisted)
}

func TestFindBestVenuesEndToEnd(t *testing.T) {
	event := sampleEvent()
	// Venue X's rag text mirrors the overall query, so its char-frequency
	// embedding tracks it closely; Y and Z are unrelated noise.
	overallText := BuildQueries(event)[0].Text
	store := newMemStore([]types.Venue{
		{ID: 1, Name: "Venue X", RAGText: overallText},
		{ID: 2, Name: "Venue Y", RAGText: "zzzz qqqq xxxx jjjj"},
		{ID: 3, Name: "Venue Z", RAGText: "wwww kkkk vvvv"},
	})
	gen := &stubGenerator{err: errors.New("provider down")}
	engine := NewEngine(store, &charFreqEmbedder{}, gen)

	result, err := engine.FindBestVenues(context.Background(), event)
	require.NoError(t, err)

	require.NotEmpty(t, result.TopVenues)
	assert.Equal(t, "Venue X", result.TopVenues[0].Name)
	assert.Equal(t, FallbackReasoning, result.Reasoning)
	assert.NotEmpty(t, result.RunID)
	assert.GreaterOrEqual(t, result.ProcessingTimeSeconds, 0.0)

	// Lazy warmup persisted all three embeddings for the next run.
	assert.Len(t, store.persisted, 3)
}

func TestFindBestVenuesCuratedPath(t *testing.T) {
	store := newMemStore(catalogOf(20))
	gen := &stubJSONGenerator{
		jsonResponse: `{"selected_restaurants": ["Venue 07", "Venue 01"], "reasoning": "Capacity and budget fit."}`,
	}
	engine := NewEngine(store, &charFreqEmbedder{}, gen)

	result, err := engine.FindBestVenues(context.Background(), sampleEvent())
	require.NoError(t, err)

	require.Len(t, result.TopVenues, ShortlistSize)
	assert.Equal(t, "Venue 07", result.TopVenues[0].Name)
	assert.Equal(t, "Venue 01", result.TopVenues[1].Name)
	assert.Equal(t, "Capacity and budget fit.", result.Reasoning)
}

func TestFindBestVenuesEmptyCatalog(t *testing.T) {
	store := newMemStore(nil)
	engine := NewEngine(store, &charFreqEmbedder{}, &stubGenerator{})

	_, err := engine.FindBestVenues(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrEmptyCatalog)
}

func TestFindBestVenuesStoreFailure(t *testing.T) {
	store := newMemStore([]types.Venue{{ID: 1, Name: "X", RAGText: "t"}})
	store.loadErr = fmt.Errorf("disk on fire")
	engine := NewEngine(store, &charFreqEmbedder{}, &stubGenerator{})

	_, err := engine.FindBestVenues(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load venue catalog")
}

func TestDescribeVenueDelegates(t *testing.T) {
	gen := &stubGenerator{response: "### 1. Venue X\n**Confidence Score:** 9/10 - great."}
	engine := NewEngine(newMemStore(nil), &charFreqEmbedder{}, gen)

	out := engine.DescribeVenue(context.Background(), types.Venue{ID: 1, Name: "Venue X"}, sampleEvent(), 1)
	assert.Contains(t, out, "Venue X")
	assert.Contains(t, out, "Confidence Score")
}
