package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyNamespace         = "engine.namespace"
	keyChunkSize         = "chunking.size"
	keyChunkOverlap      = "chunking.overlap"
	keyMinDocLength      = "chunking.min_document_length"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedEndpoint     = "embedding.endpoint"
	keyEmbedModel        = "embedding.model"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedTimeout      = "embedding.timeout"
	keyEmbedDims         = "embedding.dimensions"
	keyEmbedWorkers      = "embedding.workers"
	keyEmbedRPS          = "embedding.requests_per_second"
	keyStorageBackend    = "storage.backend"
	keyStorageDataDir    = "storage.data_dir"
	keySearchTopK        = "search.default_top_k"
	keySearchPreviewSize = "search.preview_length"
)

// EnvPrefix prefixes environment overrides. A key maps to its variable by
// upper-casing and replacing dots: embedding.api_key is
// SERCHA_RAG_EMBEDDING_API_KEY.
const EnvPrefix = "SERCHA_RAG_"

// SettingsService manages engine settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process
// environment for overrides.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current engine settings. Precedence is environment,
// then config file, then defaults.
func (s *SettingsService) Get() (*domain.EngineSettings, error) {
	defaults := domain.DefaultEngineSettings()

	provider := domain.AIProvider(s.getString(keyEmbedProvider, defaults.Embedding.Provider.String()))
	model := s.getString(keyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	timeout, err := s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout)
	if err != nil {
		return nil, err
	}
	size, err := s.getInt(keyChunkSize, defaults.Chunking.Size)
	if err != nil {
		return nil, err
	}
	overlap, err := s.getInt(keyChunkOverlap, defaults.Chunking.Overlap)
	if err != nil {
		return nil, err
	}
	minLength, err := s.getInt(keyMinDocLength, defaults.Chunking.MinDocumentLength)
	if err != nil {
		return nil, err
	}
	dims, err := s.getInt(keyEmbedDims, s.defaultDimensions(model, defaults.Embedding.Dimensions))
	if err != nil {
		return nil, err
	}
	workers, err := s.getInt(keyEmbedWorkers, defaults.Embedding.Workers)
	if err != nil {
		return nil, err
	}
	rps, err := s.getFloat(keyEmbedRPS, defaults.Embedding.RequestsPerSecond)
	if err != nil {
		return nil, err
	}
	topK, err := s.getInt(keySearchTopK, defaults.Search.DefaultTopK)
	if err != nil {
		return nil, err
	}
	preview, err := s.getInt(keySearchPreviewSize, defaults.Search.PreviewLength)
	if err != nil {
		return nil, err
	}

	settings := &domain.EngineSettings{
		Namespace: s.getString(keyNamespace, defaults.Namespace),
		Chunking: domain.ChunkingSettings{
			Size:              size,
			Overlap:           overlap,
			MinDocumentLength: minLength,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			Endpoint:          s.getString(keyEmbedEndpoint, ""), // Empty means provider default
			APIKey:            s.getString(keyEmbedAPIKey, ""),
			Timeout:           timeout,
			Dimensions:        dims,
			Workers:           workers,
			RequestsPerSecond: rps,
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackend(s.getString(keyStorageBackend, defaults.Storage.Backend.String())),
			DataDir: s.getString(keyStorageDataDir, ""),
		},
		Search: domain.SearchSettings{
			DefaultTopK:   topK,
			PreviewLength: preview,
		},
	}

	return settings, nil
}

// Save persists engine settings. Environment overrides are not written
// back unless they were part of settings.
func (s *SettingsService) Save(settings *domain.EngineSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyNamespace, settings.Namespace},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyMinDocLength, settings.Chunking.MinDocumentLength},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedEndpoint, settings.Embedding.Endpoint},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyEmbedWorkers, settings.Embedding.Workers},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyStorageBackend, settings.Storage.Backend.String()},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keySearchTopK, settings.Search.DefaultTopK},
		{keySearchPreviewSize, settings.Search.PreviewLength},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidConfiguration, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.APIKey = apiKey
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if dims, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = dims
	}
	// Endpoints are provider specific.
	settings.Embedding.Endpoint = ""

	return s.Save(settings)
}

// SetChunking updates the chunk window after validating it.
func (s *SettingsService) SetChunking(size, overlap int) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Chunking.Size = size
	settings.Chunking.Overlap = overlap
	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s is not fully configured",
			domain.ErrInvalidConfiguration, settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.EngineSettings {
	return domain.DefaultEngineSettings()
}

// defaultDimensions prefers the known size of model over the generic default.
func (s *SettingsService) defaultDimensions(model string, fallback int) int {
	if dims, ok := domain.EmbeddingDimensions()[model]; ok {
		return dims
	}
	return fallback
}

// env returns the environment override for key.
func (s *SettingsService) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	return s.lookupEnv(EnvName(key))
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) (int, error) {
	if v, ok := s.env(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not an integer", domain.ErrInvalidConfiguration, EnvName(key), v)
		}
		return n, nil
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key), nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getFloat(key string, defaultVal float64) (float64, error) {
	if v, ok := s.env(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a number", domain.ErrInvalidConfiguration, EnvName(key), v)
		}
		return f, nil
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key), nil
	}
	return defaultVal, nil
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if v, ok := s.env(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a duration", domain.ErrInvalidConfiguration, EnvName(key), v)
		}
		return d, nil
	}
	if d := s.configStore.GetDuration(key); d > 0 {
		return d, nil
	}
	return defaultVal, nil
}
