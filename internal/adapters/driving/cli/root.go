// Package cli provides the cobra command tree for sercha-rag.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Services holds the ports commands run against.
type Services struct {
	Ingest   driving.IngestionService
	Search   driving.SearchService
	Versions driving.VersionService
	Settings driving.SettingsService

	Loader  driven.DocumentLoader
	Watcher driven.FileWatcher

	// CheckEmbedding pings the provider described by settings.
	CheckEmbedding func(ctx context.Context, settings domain.EmbeddingSettings) error

	// Metrics is exposed by "mcp serve --port".
	Metrics http.Handler
}

// BootstrapFunc builds the services. With settingsOnly set only Settings
// and CheckEmbedding are needed, so no provider or store is opened. The
// returned close function releases them after the command finishes.
type BootstrapFunc func(ctx context.Context, settingsOnly bool) (*Services, func() error, error)

var (
	ingestService   driving.IngestionService
	searchService   driving.SearchService
	versionService  driving.VersionService
	settingsService driving.SettingsService
	documentLoader  driven.DocumentLoader
	fileWatcher     driven.FileWatcher
	checkEmbedding  func(ctx context.Context, settings domain.EmbeddingSettings) error
	metricsHandler  http.Handler

	bootstrap     BootstrapFunc
	closeServices func() error
	verbose       bool
)

// bootstrapMode is the command annotation that limits what is built.
const (
	bootstrapMode = "bootstrap"
	modeNone      = "none"
	modeSettings  = "settings"
)

var rootCmd = &cobra.Command{
	Use:   "sercha-rag",
	Short: "Ingest documents and retrieve grounding passages",
	Long: `sercha-rag turns local documents into vector embeddings, stores them in
versioned collections and answers similarity queries against the active one.

Ingest into a new version, check it, then promote it. Searches keep reading
the previous version until the promotion succeeds.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap sets the function used to build services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices injects already built services.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	searchService = s.Search
	versionService = s.Versions
	settingsService = s.Settings
	documentLoader = s.Loader
	fileWatcher = s.Watcher
	checkEmbedding = s.CheckEmbedding
	metricsHandler = s.Metrics
}

// Execute runs the root command with ctx and releases bootstrapped
// services afterwards.
func Execute(ctx context.Context) error {
	// cmd.Print* falls back to stderr; results belong on stdout.
	rootCmd.SetOut(rootCmd.OutOrStdout())
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, closeBootstrapped())
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	mode := commandMode(cmd)
	if bootstrap == nil || mode == modeNone {
		return nil
	}

	services, closeFn, err := bootstrap(cmd.Context(), mode == modeSettings)
	if err != nil {
		return err
	}
	SetServices(services)
	closeServices = closeFn
	return nil
}

// commandMode returns the bootstrap annotation of cmd or its nearest
// annotated parent.
func commandMode(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if mode, ok := c.Annotations[bootstrapMode]; ok {
			return mode
		}
	}
	return ""
}

func closeBootstrapped() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
