package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage engine settings",
	Long: `View and configure the embedding provider, chunking and storage.

Settings are stored in ~/.sercha-rag/config.toml. SERCHA_RAG_* environment
variables override stored values.`,
	Annotations: map[string]string{bootstrapMode: modeSettings},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively select the embedding provider and model, then check that the provider answers.`,
	RunE:  runSettingsEmbedding,
}

var (
	chunkSize    int
	chunkOverlap int
)

var settingsChunkingCmd = &cobra.Command{
	Use:   "chunking",
	Short: "Set the chunk window",
	Long: `Set the number of words per chunk and the words shared by consecutive
chunks. Existing versions keep their chunks; ingest into a new version to
apply the change.`,
	RunE: runSettingsChunking,
}

var (
	storageBackend string
	storageDataDir string
)

var settingsStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Set the storage backend",
	RunE:  runSettingsStorage,
}

func init() {
	settingsChunkingCmd.Flags().IntVar(&chunkSize, "size", 0, "words per chunk")
	settingsChunkingCmd.Flags().IntVar(&chunkOverlap, "overlap", -1, "words shared by consecutive chunks")
	settingsStorageCmd.Flags().StringVar(&storageBackend, "backend", "", "sqlite or memory")
	settingsStorageCmd.Flags().StringVar(&storageDataDir, "data-dir", "", "directory holding the SQLite database")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsChunkingCmd)
	settingsCmd.AddCommand(settingsStorageCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Printf("Namespace: %s\n", settings.Namespace)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Endpoint != "" {
		cmd.Printf("  Endpoint: %s\n", settings.Embedding.Endpoint)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Fallback dimensions: %d\n", settings.Embedding.Dimensions)
	cmd.Printf("  Workers: %d\n", settings.Embedding.Workers)
	cmd.Printf("  Timeout: %s\n", settings.Embedding.Timeout)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d words\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d words\n", settings.Chunking.Overlap)
	cmd.Printf("  Minimum document length: %d\n", settings.Chunking.MinDocumentLength)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Backend == domain.StorageSQLite {
		dir := settings.Storage.DataDir
		if dir == "" {
			dir = "(default)"
		}
		cmd.Printf("  Data dir: %s\n", dir)
	}
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Default top-k: %d\n", settings.Search.DefaultTopK)
	cmd.Printf("  Preview length: %d\n", settings.Search.PreviewLength)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'sercha-rag settings embedding' to fix the provider configuration.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if checkEmbedding != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		cmd.Print("Validating configuration... ")
		if err := checkEmbedding(cmd.Context(), settings.Embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			// Saved anyway: ingestion still works with zero vectors.
			cmd.Println("The provider did not answer. Entries will be stored without real embeddings until it does.")
			return nil
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsChunking(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	size, overlap := settings.Chunking.Size, settings.Chunking.Overlap
	if cmd.Flags().Changed("size") {
		size = chunkSize
	}
	if cmd.Flags().Changed("overlap") {
		overlap = chunkOverlap
	}

	if err := settingsService.SetChunking(size, overlap); err != nil {
		return fmt.Errorf("failed to set chunking: %w", err)
	}
	cmd.Printf("Chunking set to %d words with %d overlap\n", size, overlap)
	return nil
}

func runSettingsStorage(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if cmd.Flags().Changed("backend") {
		backend := domain.StorageBackend(storageBackend)
		if !backend.IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfiguration, storageBackend)
		}
		settings.Storage.Backend = backend
	}
	if cmd.Flags().Changed("data-dir") {
		settings.Storage.DataDir = storageDataDir
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Storage backend: %s\n", settings.Storage.Backend)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
