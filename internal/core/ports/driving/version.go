package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VersionService manages collection versions and the active pointer.
type VersionService interface {
	// CreateVersion creates an empty collection in the Building state.
	// An empty id produces a timestamp-based name.
	CreateVersion(ctx context.Context, id string) (*domain.Version, error)

	// AtomicSwap makes the named collection active.
	AtomicSwap(ctx context.Context, name string) error

	// Promote is AtomicSwap addressed by version id or collection name.
	Promote(ctx context.Context, versionID string) (bool, error)

	// Rollback re-activates the most recently retired version.
	Rollback(ctx context.Context) (*domain.Version, error)

	// Active returns the active collection name, or "" when none.
	Active() string

	// List returns all versions of the namespace, oldest first.
	List(ctx context.Context) ([]domain.Version, error)

	// Namespace returns the namespace this service manages.
	Namespace() string
}
