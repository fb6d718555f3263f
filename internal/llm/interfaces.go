// Package llm provides the language-model provider clients used by the
// recommendation pipeline: text completion for the two curation stages and
// vector embeddings for semantic ranking. All clients are hand-rolled HTTP
// with circuit breaker protection; none of them retries a failed call.
package llm

import "context"

// TextGenerator is the interface for single-turn LLM text completion.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}

// JSONGenerator is implemented by clients that can force a machine-parseable
// JSON object response (e.g. the OpenAI response_format flag). Callers that
// need structured output type-assert for it and fall back to plain Complete
// with JSON instructions in the prompt.
type JSONGenerator interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// EmbeddingGenerator is the interface for generating vector embeddings.
// Returns float32 slices; callers widen to float64 for catalog storage.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
