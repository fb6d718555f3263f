package recommend

import (
	"context"
	"log"
	"math"
	"sort"

	"github.com/reservedai/venuescout/internal/llm"
	"github.com/reservedai/venuescout/pkg/types"
)

// Candidates selected per label. The overall label casts a wide net; the
// specialized labels each contribute a handful.
const (
	overallMatchCount   = 25
	criterionMatchCount = 5
)

// Ranker scores catalog venues against criterion queries by embedding cosine
// similarity and applies the cross-label diversity policy.
type Ranker struct {
	embedder llm.EmbeddingGenerator
}

// NewRanker creates a ranker using the given embedding provider.
func NewRanker(embedder llm.EmbeddingGenerator) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank produces the per-label candidate lists for the given queries. A failed
// query embedding yields an empty list for that label only; the run continues.
// Venues without embeddings are skipped, never scored as zero.
//
// Label processing order is the order of the queries slice. The diversity
// policy makes results order-dependent, so callers must pass queries in the
// canonical types.QueryLabels order.
func (r *Ranker) Rank(ctx context.Context, queries []Query, venues []types.Venue) map[types.QueryLabel][]types.ScoredMatch {
	results := make(map[types.QueryLabel][]types.ScoredMatch, len(queries))

	// Names picked by any completed non-overall label. Later labels avoid
	// these to keep the specialized lists from converging on one venue.
	crossSelected := make(map[string]bool)

	for _, q := range queries {
		vec, err := r.embedder.Embed(ctx, q.Text)
		if err != nil {
			log.Printf("ranker: embedding failed for label %s: %v", q.Label, err)
			results[q.Label] = []types.ScoredMatch{}
			continue
		}
		queryEmbedding := widen(vec)

		scored := scoreVenues(queryEmbedding, venues, q.Label)

		limit := criterionMatchCount
		if q.Label == types.LabelOverall {
			limit = overallMatchCount
		}

		picks := selectDiverse(scored, limit, q.Label, crossSelected)
		if q.Label != types.LabelOverall {
			for _, m := range picks {
				crossSelected[m.Venue.Name] = true
			}
		}
		results[q.Label] = picks
	}

	return results
}

// scoreVenues computes cosine similarity for every embeddable venue and
// returns the matches sorted by score descending. The sort is stable so ties
// keep catalog order and reruns are reproducible.
func scoreVenues(queryEmbedding []float64, venues []types.Venue, label types.QueryLabel) []types.ScoredMatch {
	scored := make([]types.ScoredMatch, 0, len(venues))
	for _, v := range venues {
		if !v.HasEmbedding() || len(v.Embedding) != len(queryEmbedding) {
			continue
		}
		scored = append(scored, types.ScoredMatch{
			Venue: v,
			Score: cosineSimilarity(queryEmbedding, v.Embedding),
			Label: label,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// selectDiverse fills a label's list from the sorted candidates.
//
// Pass 1 prefers names no prior label picked; a cross-selected name is only
// admitted when excluding it would leave fewer unique remaining candidates
// than slots still open. Pass 2 fills any shortfall top-down ignoring the
// cross-label set, still deduplicating within the label. The overall label
// ignores the cross-label set entirely.
func selectDiverse(scored []types.ScoredMatch, limit int, label types.QueryLabel, crossSelected map[string]bool) []types.ScoredMatch {
	constrained := label != types.LabelOverall

	seen := make(map[string]bool)
	picks := make([]types.ScoredMatch, 0, limit)

	for _, m := range scored {
		if len(picks) >= limit {
			break
		}
		name := m.Venue.Name
		if seen[name] {
			continue
		}
		if constrained && crossSelected[name] {
			if uniqueRemaining(scored, seen, crossSelected) >= limit-len(picks) {
				continue
			}
			// Too few fresh candidates left; waive the exclusion.
		}
		picks = append(picks, m)
		seen[name] = true
	}

	// Relaxed fill for any remaining slots.
	for _, m := range scored {
		if len(picks) >= limit {
			break
		}
		if seen[m.Venue.Name] {
			continue
		}
		picks = append(picks, m)
		seen[m.Venue.Name] = true
	}

	return picks
}

// uniqueRemaining counts candidate names not yet taken by this label and not
// held by the cross-label exclusion set.
func uniqueRemaining(scored []types.ScoredMatch, seen, crossSelected map[string]bool) int {
	counted := make(map[string]bool)
	for _, m := range scored {
		name := m.Venue.Name
		if seen[name] || crossSelected[name] || counted[name] {
			continue
		}
		counted[name] = true
	}
	return len(counted)
}

// cosineSimilarity returns the cosine of the angle between two equal-length
// vectors: 1 identical direction, 0 orthogonal, -1 opposite. A zero vector on
// either side scores 0.
func cosineSimilarity(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// widen converts a provider float32 vector to the catalog's float64 form.
func widen(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
