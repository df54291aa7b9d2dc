package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService manages engine settings.
type SettingsService interface {
	// Get retrieves current engine settings with defaults and environment
	// overrides applied.
	Get() (*domain.EngineSettings, error)

	// Save persists engine settings.
	Save(settings *domain.EngineSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetChunking updates the chunk window after validating it.
	SetChunking(size, overlap int) error

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.EngineSettings
}
