// Package app wires adapters and services into a running engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

const pingTimeout = 5 * time.Second

// Engine holds the wired services for one process.
type Engine struct {
	Settings domain.EngineSettings

	Embedder *services.Embedder
	Index    *services.VectorIndex
	Versions *services.VersionManager
	Ingest   *services.IngestionService
	Search   *services.SearchService

	Loader  *filesystem.Loader
	Watcher *filesystem.Watcher
	Metrics *metrics.Metrics

	closers []func() error
}

// New builds an engine from settings. The embedding provider is probed for
// its dimensionality; an unreachable provider is logged, not fatal.
func New(ctx context.Context, settings domain.EngineSettings) (*Engine, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{Settings: settings, Metrics: metrics.New()}

	provider, err := ai.CreateEmbeddingProvider(settings.Embedding)
	if err != nil {
		return nil, err
	}
	e.Embedder = services.NewEmbedder(provider,
		services.WithWorkers(settings.Embedding.Workers),
		services.WithFallbackDimensions(settings.Embedding.Dimensions),
		services.WithRateLimit(settings.Embedding.RequestsPerSecond),
		services.WithEmbedderMetrics(e.Metrics),
	)
	e.closers = append(e.closers, e.Embedder.Close)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	if err := e.Embedder.Ping(pingCtx); err != nil {
		logger.Warn("embedding provider %s is not reachable: %v", settings.Embedding.Provider, err)
	}
	cancel()
	e.Embedder.Discover(ctx)

	backend, versionStore, closeStore, err := openStorage(settings.Storage)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	e.Index = services.NewVectorIndex(backend)
	e.closers = append(e.closers, closeStore, e.Index.Close)

	e.Versions = services.NewVersionManager(settings.Namespace, e.Index, versionStore,
		services.WithVersionMetrics(e.Metrics))
	if err := e.Versions.Load(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	seedDimensions(ctx, e)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.Build(registry, domain.PipelineConfigFor(settings.Chunking))
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	e.Ingest = services.NewIngestionService(e.Index, e.Embedder, pipeline,
		services.WithMinDocumentLength(settings.Chunking.MinDocumentLength),
		services.WithIngestMetrics(e.Metrics),
		services.WithActiveVersion(e.Versions),
	)
	e.Search = services.NewSearchService(e.Index, e.Embedder, e.Versions,
		services.WithDefaultTopK(settings.Search.DefaultTopK),
		services.WithPreviewLength(settings.Search.PreviewLength),
		services.WithSearchMetrics(e.Metrics),
	)

	e.Loader = filesystem.NewLoader()
	e.Watcher = filesystem.NewWatcher(e.Loader)
	e.closers = append(e.closers, e.Watcher.Close)

	logger.Debug("engine ready: namespace=%s storage=%s model=%s",
		settings.Namespace, settings.Storage.Backend, e.Embedder.ModelName())
	return e, nil
}

// seedDimensions fixes the embedder's dimensionality from the active
// collection so fallback vectors match what is already stored.
func seedDimensions(ctx context.Context, e *Engine) {
	active := e.Versions.Active()
	if active == "" {
		return
	}
	col, err := e.Index.Collection(ctx, active)
	if err != nil {
		logger.Warn("active collection %s: %v", active, err)
		return
	}
	dim, err := col.Dimensions(ctx)
	if err != nil {
		logger.Warn("active collection %s: %v", active, err)
		return
	}
	if dim > 0 && !e.Embedder.Seed(dim) {
		logger.Warn("active collection %s holds %d-dim vectors, model %s produces %d",
			active, dim, e.Embedder.ModelName(), e.Embedder.Dimensions())
	}
}

// openStorage returns the vector backend and version store for settings
// and a function that releases the underlying storage.
func openStorage(s domain.StorageSettings) (driven.VectorBackend, driven.VersionStore, func() error, error) {
	switch s.Backend {
	case domain.StorageMemory:
		return memory.NewVectorBackend(), memory.NewVersionStore(), func() error { return nil }, nil
	case domain.StorageSQLite:
		store, err := sqlite.NewStore(s.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("sqlite store: %s", store.Path())
		return store.Backend(), store.VersionStore(), store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfiguration, s.Backend)
	}
}

// Close releases the engine's resources in reverse order of creation.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Services exposes the engine through the CLI's ports.
func (e *Engine) Services(settings *services.SettingsService) *cli.Services {
	return &cli.Services{
		Ingest:         e.Ingest,
		Search:         e.Search,
		Versions:       e.Versions,
		Settings:       settings,
		Loader:         e.Loader,
		Watcher:        e.Watcher,
		CheckEmbedding: ai.ValidateEmbeddingConfig,
		Metrics:        e.Metrics.Handler(),
	}
}

// Option configures Bootstrap.
type Option func(*bootstrapConfig)

type bootstrapConfig struct {
	configDir   string
	configStore driven.ConfigStore
}

// WithConfigDir reads config.toml from dir instead of ~/.sercha-rag.
func WithConfigDir(dir string) Option {
	return func(c *bootstrapConfig) {
		c.configDir = dir
	}
}

// WithConfigStore uses store instead of the TOML file.
func WithConfigStore(store driven.ConfigStore) Option {
	return func(c *bootstrapConfig) {
		c.configStore = store
	}
}

// Bootstrap returns the function the CLI calls before running a command.
func Bootstrap(opts ...Option) cli.BootstrapFunc {
	cfg := &bootstrapConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx context.Context, settingsOnly bool) (*cli.Services, func() error, error) {
		store := cfg.configStore
		if store == nil {
			fileStore, err := file.NewConfigStore(cfg.configDir)
			if err != nil {
				return nil, nil, fmt.Errorf("open config: %w", err)
			}
			store = fileStore
		}
		logger.Debug("config: %s", store.Path())

		settingsService := services.NewSettingsService(store)
		if settingsOnly {
			return &cli.Services{
				Settings:       settingsService,
				CheckEmbedding: ai.ValidateEmbeddingConfig,
			}, nil, nil
		}

		settings, err := settingsService.Get()
		if err != nil {
			return nil, nil, fmt.Errorf("load settings: %w", err)
		}
		engine, err := New(ctx, *settings)
		if err != nil {
			return nil, nil, err
		}
		return engine.Services(settingsService), engine.Close, nil
	}
}
