package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
//
// All vectors produced by one Embedder instance share the same dimension.
// Upstream failures are reported wrapped in core.ErrEmbeddingUnavailable;
// a failed batch call yields no partial results.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice has the same length and ordering as texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a text response conditioned on a structured prompt.
// Implementations must be thread-safe for concurrent use.
//
// Upstream failures are reported wrapped in core.ErrGenerationUnavailable.
type Generator interface {
	// Generate invokes the external generation capability with the given
	// prompt and returns its response text.
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
