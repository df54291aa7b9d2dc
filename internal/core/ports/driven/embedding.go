// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingProvider generates a vector embedding from text by calling an
// external model server.
//
// Providers report every failure as an error. Fallback behaviour lives in
// the core Embedder, not in providers.
//
// Implementations include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI and compatible servers (text-embedding-3-small)
type EmbeddingProvider interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
