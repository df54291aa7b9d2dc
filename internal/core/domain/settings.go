package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API or any compatible server.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend identifies where collections are kept.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists collections in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps collections in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	// Size is the number of words per chunk.
	Size int

	// Overlap is the number of words shared by consecutive chunks.
	Overlap int

	// MinDocumentLength is the sanitized character count below which a
	// document is skipped.
	MinDocumentLength int
}

// Validate checks the chunk window.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, c.Size)
	}
	if c.Overlap < 0 || c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			ErrInvalidConfiguration, c.Size, c.Overlap)
	}
	if c.MinDocumentLength < 0 {
		return fmt.Errorf("%w: minimum document length must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// Endpoint is the API base URL. Empty means the provider default.
	Endpoint string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout bounds each provider call.
	Timeout time.Duration

	// Dimensions is used when discovery against the provider fails.
	Dimensions int

	// Workers bounds concurrent provider calls in a batch.
	Workers int

	// RequestsPerSecond limits provider calls. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds vector storage configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the SQLite database. Empty means ~/.sercha-rag/data.
	DataDir string
}

// SearchSettings holds retrieval configuration.
type SearchSettings struct {
	// DefaultTopK is used when a caller passes a non-positive topK.
	DefaultTopK int

	// PreviewLength is the number of characters kept in a preview.
	PreviewLength int
}

// EngineSettings holds all engine settings.
type EngineSettings struct {
	// Namespace prefixes every collection name.
	Namespace string

	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
	Search    SearchSettings
}

// Validate checks settings that must hold before the engine starts.
func (s EngineSettings) Validate() error {
	if s.Namespace == "" {
		return fmt.Errorf("%w: namespace must not be empty", ErrInvalidConfiguration)
	}
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfiguration, s.Embedding.Provider)
	}
	if s.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", ErrInvalidConfiguration)
	}
	if s.Embedding.Workers <= 0 {
		return fmt.Errorf("%w: embedding workers must be positive", ErrInvalidConfiguration)
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfiguration, s.Storage.Backend)
	}
	if s.Search.DefaultTopK <= 0 || s.Search.PreviewLength <= 0 {
		return fmt.Errorf("%w: search limits must be positive", ErrInvalidConfiguration)
	}
	return nil
}

// Defaults used by DefaultEngineSettings.
const (
	DefaultNamespace         = "docs"
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultMinDocumentLength = 100
	DefaultDimensions        = 768
	DefaultEmbedWorkers      = 5
	DefaultEmbedTimeout      = 30 * time.Second
	DefaultTopK              = 5
	DefaultPreviewLength     = 200
)

// DefaultEngineSettings returns settings that work against a local Ollama.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		Namespace: DefaultNamespace,
		Chunking: ChunkingSettings{
			Size:              DefaultChunkSize,
			Overlap:           DefaultChunkOverlap,
			MinDocumentLength: DefaultMinDocumentLength,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      DefaultEmbeddingModels()[AIProviderOllama],
			Timeout:    DefaultEmbedTimeout,
			Dimensions: DefaultDimensions, // nomic-embed-text
			Workers:    DefaultEmbedWorkers,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Search: SearchSettings{
			DefaultTopK:   DefaultTopK,
			PreviewLength: DefaultPreviewLength,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor returns the pipeline used for the given chunk settings.
func PipelineConfigFor(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": c.Size,
				"overlap":    c.Overlap,
			},
		},
	}
}
