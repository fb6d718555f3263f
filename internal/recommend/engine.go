package recommend

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/reservedai/venuescout/internal/catalog"
	"github.com/reservedai/venuescout/internal/llm"
	"github.com/reservedai/venuescout/pkg/types"
)

// Result is the outcome of a full recommendation run.
type Result struct {
	RunID                 string        `json:"run_id"`
	TopVenues             []types.Venue `json:"top_venues"`
	Reasoning             string        `json:"reasoning"`
	ProcessingTimeSeconds float64       `json:"processing_time_seconds"`
}

// Engine wires the pipeline stages onto a catalog store and the LLM
// providers. A single Engine serves all runs; it holds no per-run state.
type Engine struct {
	store       catalog.Store
	embedder    llm.EmbeddingGenerator
	ranker      *Ranker
	shortlister *Shortlister
	recommender *Recommender
}

// NewEngine creates the recommendation engine.
func NewEngine(store catalog.Store, embedder llm.EmbeddingGenerator, generator llm.TextGenerator) *Engine {
	return &Engine{
		store:       store,
		embedder:    embedder,
		ranker:      NewRanker(embedder),
		shortlister: NewShortlister(generator),
		recommender: NewRecommender(generator),
	}
}

// EnsureEmbeddings loads the catalog and lazily computes embeddings for
// venues that lack one, persisting each through the store so the work is
// never repeated. A venue whose embedding call fails is left without one for
// this run (it simply contributes no matches); only total catalog failure is
// an error.
func (e *Engine) EnsureEmbeddings(ctx context.Context) ([]types.Venue, error) {
	venues, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue catalog: %w", err)
	}

	model := e.embedder.GetModel()
	computed := 0
	for i := range venues {
		if venues[i].HasEmbedding() || venues[i].RAGText == "" {
			continue
		}

		vec, err := e.embedder.Embed(ctx, venues[i].RAGText)
		if err != nil {
			log.Printf("engine: embedding failed for venue %q: %v", venues[i].Name, err)
			continue
		}
		venues[i].Embedding = widen(vec)
		computed++

		if err := e.store.PersistEmbedding(ctx, venues[i].ID, venues[i].Embedding, model); err != nil {
			log.Printf("engine: failed to persist embedding for venue %q: %v", venues[i].Name, err)
		}
	}
	if computed > 0 {
		log.Printf("engine: computed %d new venue embeddings", computed)
	}

	return venues, nil
}

// FindBestVenues runs QueryBuilder, MatchRanker and Shortlister and returns
// the curated top venues. The only hard failure is catalog load failure;
// provider trouble degrades to the score-based fallback inside the stages.
func (e *Engine) FindBestVenues(ctx context.Context, event *types.EventDescription) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log.Printf("engine: run %s started", runID)

	venues, err := e.EnsureEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	queries := BuildQueries(event)
	ranked := e.ranker.Rank(ctx, queries, venues)
	shortlist := e.shortlister.Select(ctx, ranked, event)

	elapsed := time.Since(start).Seconds()
	log.Printf("engine: run %s completed in %.2fs with %d venues", runID, elapsed, len(shortlist.Venues))

	return &Result{
		RunID:                 runID,
		TopVenues:             shortlist.Venues,
		Reasoning:             shortlist.Reasoning,
		ProcessingTimeSeconds: elapsed,
	}, nil
}

// DescribeVenue runs Stage 2 for a single venue at the given 1-based display
// position. It always returns renderable text.
func (e *Engine) DescribeVenue(ctx context.Context, venue types.Venue, event *types.EventDescription, position int) string {
	return e.recommender.Describe(ctx, venue, event, position)
}
