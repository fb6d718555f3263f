package recommend

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/reservedai/venuescout/internal/llm"
	"github.com/reservedai/venuescout/pkg/types"
)

// Recommender runs Stage 2: one free-text LLM call per shortlisted venue
// producing the detailed write-up. Calls are independent per venue; callers
// may issue them concurrently.
type Recommender struct {
	generator llm.TextGenerator
}

// NewRecommender creates a recommender using the given text provider.
func NewRecommender(generator llm.TextGenerator) *Recommender {
	return &Recommender{generator: generator}
}

// Describe generates the narrative for one venue at the given display
// position (1-based). It never returns an error: provider failures produce a
// fixed-format error block using the same heading structure, so rendering
// needs no special case.
func (r *Recommender) Describe(ctx context.Context, venue types.Venue, event *types.EventDescription, position int) string {
	rec := poolRecord{
		ID:           venue.ID,
		Name:         venue.Name,
		Address:      venue.Address,
		Neighborhood: venue.Neighborhood,
		Cuisine:      venue.Cuisine,
		Pricing:      venue.Pricing,
		RAGData:      venue.RAGText,
	}

	prompt, err := buildNarrativePrompt(rec, event, position)
	if err != nil {
		return errorNarrative(position, venue.Name, err)
	}

	narrative, err := r.generator.Complete(ctx, prompt)
	if err != nil {
		log.Printf("recommender: narrative generation failed for %q: %v", venue.Name, err)
		return errorNarrative(position, venue.Name, err)
	}

	return strings.TrimSpace(narrative)
}

// errorNarrative renders the degraded Stage 2 output.
func errorNarrative(position int, name string, err error) string {
	return fmt.Sprintf(`### %d. %s

*Error: Could not generate detailed recommendation for this venue.*

**Error Details:** %v`, position, name, err)
}
