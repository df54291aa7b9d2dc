package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

var (
	ingestVersion string
	ingestNew     bool
	ingestPromote bool
	ingestWatch   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Load documents and write them into a version",
	Long: `Loads markdown and text files from the given paths, chunks and embeds
them and writes the entries into a collection version.

By default entries go into the active version. Use --new to build a fresh
version and --promote to activate it once ingestion succeeds. With --watch
the command keeps running and re-ingests files as they change.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestVersion, "version", "", "target version id or collection name")
	ingestCmd.Flags().BoolVar(&ingestNew, "new", false, "create a new version to ingest into")
	ingestCmd.Flags().BoolVar(&ingestPromote, "promote", false, "promote the target version after ingestion")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching the paths for changes")
	ingestCmd.MarkFlagsMutuallyExclusive("version", "new")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errNotConfigured("ingest")
	}
	if versionService == nil {
		return errNotConfigured("version")
	}
	if documentLoader == nil {
		return errNotConfigured("document loader")
	}
	ctx := cmd.Context()

	target, err := ingestTarget(ctx)
	if err != nil {
		return err
	}

	docs, loadErr := documentLoader.Load(ctx, args...)
	if loadErr != nil {
		if len(docs) == 0 {
			return fmt.Errorf("load documents: %w", loadErr)
		}
		logger.Warn("some files could not be loaded: %v", loadErr)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Printf("Ingesting %d document(s) into %s\n", len(docs), target)
	report, err := ingestService.Ingest(ctx, docs, target)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printReport(cmd, report)

	if ingestPromote {
		if _, err := versionService.Promote(ctx, target); err != nil {
			return fmt.Errorf("promote %s: %w", target, err)
		}
		cmd.Printf("Promoted %s\n", target)
	}

	if ingestWatch {
		return watchAndIngest(cmd, args, target)
	}
	return nil
}

// ingestTarget resolves the collection the command writes into.
func ingestTarget(ctx context.Context) (string, error) {
	switch {
	case ingestNew:
		v, err := versionService.CreateVersion(ctx, "")
		if err != nil {
			return "", fmt.Errorf("create version: %w", err)
		}
		return v.Name, nil
	case ingestVersion != "":
		return collectionName(ingestVersion), nil
	}

	active := versionService.Active()
	if active == "" {
		return "", errors.New("no active version: use --new to create one")
	}
	return active, nil
}

// collectionName prefixes id with the namespace unless it already carries it.
func collectionName(id string) string {
	prefix := versionService.Namespace() + "_"
	if strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) {
	cmd.Printf("  written:  %d\n", r.Written)
	if r.Skipped > 0 {
		cmd.Printf("  skipped:  %d\n", r.Skipped)
	}
	if r.Degraded > 0 {
		cmd.Printf("  degraded: %d (stored with zero vectors)\n", r.Degraded)
	}
	if r.Failed > 0 {
		cmd.Printf("  failed:   %d\n", r.Failed)
		for _, f := range r.Failures {
			cmd.Printf("    %s #%d: %v\n", f.Source, f.ChunkIndex, f.Err)
		}
	}
}

func watchAndIngest(cmd *cobra.Command, paths []string, target string) error {
	if fileWatcher == nil {
		return errNotConfigured("file watcher")
	}
	ctx := cmd.Context()

	changes, err := fileWatcher.Watch(ctx, paths...)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", strings.Join(paths, ", "))

	for change := range changes {
		if err := applyChange(ctx, change, target); err != nil {
			logger.Warn("%s %s: %v", change.Type, change.Path, err)
			continue
		}
		cmd.Printf("%s %s\n", change.Type, change.Path)
	}
	return nil
}

// applyChange keeps target in step with one file change.
func applyChange(ctx context.Context, change domain.FileChange, target string) error {
	if change.Type == domain.ChangeDeleted {
		_, err := ingestService.Remove(ctx, change.Path, target)
		return err
	}

	doc, err := documentLoader.LoadFile(ctx, change.Path)
	if err != nil {
		return err
	}
	report, err := ingestService.Ingest(ctx, []domain.Document{*doc}, target)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d chunk(s) failed", report.Failed)
	}
	return nil
}
