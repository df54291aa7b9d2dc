package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VersionStore persists version records and the active pointer of each
// namespace so they survive restarts.
type VersionStore interface {
	// Save creates or updates a version record.
	Save(ctx context.Context, v domain.Version) error

	// Get returns a version by collection name or domain.ErrNotFound.
	Get(ctx context.Context, name string) (*domain.Version, error)

	// List returns all versions of a namespace, oldest first.
	List(ctx context.Context, namespace string) ([]domain.Version, error)

	// SetActive records name as the active collection of namespace.
	SetActive(ctx context.Context, namespace, name string) error

	// Active returns the active collection of namespace, or "" when none
	// has been promoted.
	Active(ctx context.Context, namespace string) (string, error)
}
