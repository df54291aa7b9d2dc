package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentLoader reads documents from local paths.
type DocumentLoader interface {
	// Load reads every supported file under paths. Directories are walked
	// recursively. Files that cannot be read are reported in the returned
	// error while the remaining documents are still returned.
	Load(ctx context.Context, paths ...string) ([]domain.Document, error)

	// LoadFile reads a single file.
	LoadFile(ctx context.Context, path string) (*domain.Document, error)
}

// FileWatcher reports changes to supported files.
type FileWatcher interface {
	// Watch starts watching paths. The channel is closed when ctx is
	// cancelled or the watcher is closed.
	Watch(ctx context.Context, paths ...string) (<-chan domain.FileChange, error)

	// Close stops the watcher.
	Close() error
}
