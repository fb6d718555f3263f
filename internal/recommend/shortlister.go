package recommend

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/reservedai/venuescout/internal/llm"
	"github.com/reservedai/venuescout/pkg/types"
)

// ShortlistSize is the curated venue count Stage 1 aims for.
const ShortlistSize = 15

// FallbackReasoning is the reasoning string attached when curation falls back
// to raw similarity scores.
const FallbackReasoning = "Selected based on similarity scores (algorithmic fallback)."

// Shortlister runs Stage 1: one structured LLM call curating the ranked pool
// down to 15 venues. It never fails; any provider or parse error degrades to
// a deterministic score-ordered selection.
type Shortlister struct {
	generator llm.TextGenerator
}

// NewShortlister creates a shortlister using the given text provider. When
// the provider also implements llm.JSONGenerator the structured request uses
// its forced-JSON mode.
func NewShortlister(generator llm.TextGenerator) *Shortlister {
	return &Shortlister{generator: generator}
}

// Select curates the ranked candidates into a Shortlist. The pool is the
// union of all per-label lists deduplicated by name, keeping each name's
// highest-scoring instance.
func (s *Shortlister) Select(ctx context.Context, ranked map[types.QueryLabel][]types.ScoredMatch, event *types.EventDescription) types.Shortlist {
	pool, order := buildPool(ranked)
	if len(order) == 0 {
		return types.Shortlist{Venues: []types.Venue{}, Reasoning: FallbackReasoning}
	}

	names, reasoning, err := s.curate(ctx, pool, event)
	if err != nil {
		log.Printf("shortlister: curation failed, using score fallback: %v", err)
		return s.fallback(pool, order)
	}

	// Resolve returned names against the pool: exact first, then
	// case-insensitive substring in either direction.
	selected := make([]types.Venue, 0, ShortlistSize)
	chosen := make(map[string]bool)
	for _, name := range names {
		if len(selected) >= ShortlistSize {
			break
		}
		rec, ok := resolveName(pool, name)
		if !ok {
			log.Printf("shortlister: dropping unresolvable venue name %q", name)
			continue
		}
		if chosen[rec.Name] {
			continue
		}
		selected = append(selected, recordToVenue(rec))
		chosen[rec.Name] = true
	}

	// Top up from the score-ordered pool when the model returned too few
	// usable names.
	if len(selected) < ShortlistSize {
		for _, name := range scoreOrder(pool, order) {
			if len(selected) >= ShortlistSize {
				break
			}
			if chosen[name] {
				continue
			}
			selected = append(selected, recordToVenue(pool[name]))
			chosen[name] = true
		}
	}

	return types.Shortlist{Venues: selected, Reasoning: reasoning}
}

// curate issues the single structured-output request and parses it.
func (s *Shortlister) curate(ctx context.Context, pool map[string]poolRecord, event *types.EventDescription) ([]string, string, error) {
	prompt, err := buildShortlistPrompt(pool, event)
	if err != nil {
		return nil, "", err
	}

	var raw string
	if jg, ok := s.generator.(llm.JSONGenerator); ok {
		raw, err = jg.CompleteJSON(ctx, prompt)
	} else {
		raw, err = s.generator.Complete(ctx, prompt+"\n\nRespond with only the JSON object, no other text.")
	}
	if err != nil {
		return nil, "", err
	}

	resp, err := llm.ParseShortlistResponse(raw)
	if err != nil {
		return nil, "", err
	}
	return resp.SelectedRestaurants, resp.Reasoning, nil
}

// fallback returns the top venues by raw score with the fixed fallback
// reasoning string.
func (s *Shortlister) fallback(pool map[string]poolRecord, order []string) types.Shortlist {
	venues := make([]types.Venue, 0, ShortlistSize)
	for _, name := range scoreOrder(pool, order) {
		if len(venues) >= ShortlistSize {
			break
		}
		venues = append(venues, recordToVenue(pool[name]))
	}
	return types.Shortlist{Venues: venues, Reasoning: FallbackReasoning}
}

// buildPool flattens the per-label lists, deduplicating by name and keeping
// the highest score seen for each. order preserves first-seen sequence across
// the canonical label order so tie handling is reproducible.
func buildPool(ranked map[types.QueryLabel][]types.ScoredMatch) (map[string]poolRecord, []string) {
	pool := make(map[string]poolRecord)
	var order []string

	for _, label := range types.QueryLabels {
		for _, m := range ranked[label] {
			name := m.Venue.Name
			existing, ok := pool[name]
			if !ok {
				order = append(order, name)
			}
			if !ok || m.Score > existing.Score {
				pool[name] = poolRecord{
					ID:           m.Venue.ID,
					Name:         name,
					Score:        m.Score,
					Address:      m.Venue.Address,
					Neighborhood: m.Venue.Neighborhood,
					Cuisine:      m.Venue.Cuisine,
					Pricing:      m.Venue.Pricing,
					RAGData:      m.Venue.RAGText,
				}
			}
		}
	}
	return pool, order
}

// scoreOrder returns pool names by descending score, ties broken by
// first-seen order.
func scoreOrder(pool map[string]poolRecord, order []string) []string {
	names := make([]string, len(order))
	copy(names, order)
	sort.SliceStable(names, func(i, j int) bool {
		return pool[names[i]].Score > pool[names[j]].Score
	})
	return names
}

// resolveName finds a pool record for a model-returned name.
func resolveName(pool map[string]poolRecord, name string) (poolRecord, bool) {
	if rec, ok := pool[name]; ok {
		return rec, true
	}
	lower := strings.ToLower(name)
	// Deterministic scan order for substring matching.
	keys := make([]string, 0, len(pool))
	for k := range pool {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kl := strings.ToLower(k)
		if strings.Contains(kl, lower) || strings.Contains(lower, kl) {
			return pool[k], true
		}
	}
	return poolRecord{}, false
}

func recordToVenue(rec poolRecord) types.Venue {
	return types.Venue{
		ID:           rec.ID,
		Name:         rec.Name,
		Address:      rec.Address,
		Neighborhood: rec.Neighborhood,
		Cuisine:      rec.Cuisine,
		Pricing:      rec.Pricing,
		RAGText:      rec.RAGData,
	}
}
