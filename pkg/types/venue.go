package types

// Venue is a single catalog record. The RAGText block is the embedding source;
// the Embedding field is populated lazily on catalog warmup and cached by the
// active catalog store so it is not regenerated on later runs.
//
// Embeddings are stored as float64 throughout the catalog layer; embedding
// clients return float32 and callers widen on receipt.
type Venue struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	Cuisine      string    `json:"cuisine,omitempty"`
	Pricing      string    `json:"pricing,omitempty"`
	RAGText      string    `json:"rag_text,omitempty"`
	Embedding    []float64 `json:"embedding,omitempty"`
}

// HasEmbedding reports whether the venue carries a usable embedding vector.
// Venues without one are skipped at scoring time, never scored as zero.
func (v *Venue) HasEmbedding() bool {
	return len(v.Embedding) > 0
}

// QueryLabel identifies one of the fixed criterion queries derived from an
// EventDescription.
type QueryLabel string

const (
	LabelOverall      QueryLabel = "overall"
	LabelMeetingRooms QueryLabel = "meeting_rooms"
	LabelFood         QueryLabel = "food"
	LabelLocation     QueryLabel = "location"
	LabelAtmosphere   QueryLabel = "atmosphere"
	LabelBudget       QueryLabel = "budget"
)

// QueryLabels is the fixed processing order for criterion queries. The
// cross-label diversity policy in the ranker depends on this order, so it is a
// correctness requirement, not a presentation choice.
var QueryLabels = []QueryLabel{
	LabelOverall,
	LabelMeetingRooms,
	LabelFood,
	LabelLocation,
	LabelAtmosphere,
	LabelBudget,
}

// ScoredMatch pairs a venue with its cosine similarity to one criterion query.
// The same venue may appear under several labels; deduplication downstream is
// by display name, which is the join key the shortlist stage uses.
type ScoredMatch struct {
	Venue Venue      `json:"venue"`
	Score float64    `json:"score"`
	Label QueryLabel `json:"label"`
}

// Shortlist is the Stage 1 output: up to 15 venues in curated order plus the
// selection reasoning. It is immutable input to Stage 2.
type Shortlist struct {
	Venues    []Venue `json:"venues"`
	Reasoning string  `json:"reasoning"`
}
