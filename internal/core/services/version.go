package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
)

// Ensure VersionManager implements the interface.
var _ driving.VersionService = (*VersionManager)(nil)

// versionTimeFormat names timestamp versions, e.g. docs_v20260314091500.
const versionTimeFormat = "20060102150405"

// VersionManager owns the collection lifecycle of one namespace and the
// pointer searches read from.
//
// The pointer is swapped atomically: a concurrent search sees either the
// old or the new collection, never a mix. State changes are serialised.
type VersionManager struct {
	namespace string
	index     *VectorIndex
	store     driven.VersionStore
	metrics   *metrics.Metrics
	now       func() time.Time

	mu     sync.Mutex
	active atomic.Pointer[string]
}

// VersionOption configures a VersionManager.
type VersionOption func(*VersionManager)

// WithVersionMetrics records swap outcomes.
func WithVersionMetrics(m *metrics.Metrics) VersionOption {
	return func(v *VersionManager) {
		v.metrics = m
	}
}

// WithVersionClock overrides the clock used for names and timestamps.
func WithVersionClock(now func() time.Time) VersionOption {
	return func(v *VersionManager) {
		v.now = now
	}
}

// NewVersionManager creates a version manager for namespace.
func NewVersionManager(
	namespace string, index *VectorIndex, store driven.VersionStore, opts ...VersionOption,
) *VersionManager {
	v := &VersionManager{
		namespace: namespace,
		index:     index,
		store:     store,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load restores the active pointer from the version store. A persisted
// active collection that no longer exists is ignored with a warning.
func (v *VersionManager) Load(ctx context.Context) error {
	name, err := v.store.Active(ctx, v.namespace)
	if err != nil {
		return fmt.Errorf("load active version: %w", err)
	}
	if name == "" {
		logger.Debug("No active version for namespace %s", v.namespace)
		return nil
	}
	if _, err := v.index.Collection(ctx, name); err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			logger.Warn("version: active collection %s is missing, searches return nothing until a promotion", name)
			return nil
		}
		return fmt.Errorf("load active version: %w", err)
	}
	v.active.Store(&name)
	logger.Info("Active version for %s: %s", v.namespace, name)
	return nil
}

// Namespace returns the managed namespace.
func (v *VersionManager) Namespace() string {
	return v.namespace
}

// Active returns the active collection name, or "" when none.
func (v *VersionManager) Active() string {
	if p := v.active.Load(); p != nil {
		return *p
	}
	return ""
}

// CollectionName returns the collection name for a version id.
// Names that already carry the namespace prefix are returned unchanged.
func (v *VersionManager) CollectionName(id string) string {
	prefix := v.namespace + "_"
	if strings.HasPrefix(id, prefix) {
		return id
	}
	return prefix + id
}

// CreateVersion creates an empty collection in the Building state. An
// empty id yields {namespace}_v{timestamp}; a timestamp already taken
// gets a short random suffix.
func (v *VersionManager) CreateVersion(ctx context.Context, id string) (*domain.Version, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now().UTC()
	var name string
	if id != "" {
		name = v.CollectionName(id)
		taken, err := v.exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("create version %s: %w", name, domain.ErrAlreadyExists)
		}
	} else {
		name = v.namespace + "_v" + now.Format(versionTimeFormat)
		taken, err := v.exists(ctx, name)
		if err != nil {
			return nil, err
		}
		if taken {
			name += "_" + uuid.NewString()[:8]
		}
	}

	if _, err := v.index.Open(ctx, name); err != nil {
		return nil, fmt.Errorf("create version %s: %w", name, err)
	}
	version := domain.Version{
		Name:      name,
		Namespace: v.namespace,
		State:     domain.VersionBuilding,
		CreatedAt: now,
	}
	if err := v.store.Save(ctx, version); err != nil {
		return nil, fmt.Errorf("create version %s: %w", name, err)
	}

	logger.Info("Created version %s", name)
	return &version, nil
}

// AtomicSwap makes name the active collection. The collection must exist
// and hold at least one entry. The previous active version is retired.
// On any failure the active pointer is unchanged.
func (v *VersionManager) AtomicSwap(ctx context.Context, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.swap(ctx, name)
	v.metrics.ObserveSwap(err == nil)
	if err != nil {
		logger.Warn("version: swap to %s rejected: %v", name, err)
	}
	return err
}

func (v *VersionManager) swap(ctx context.Context, name string) error {
	col, err := v.index.Collection(ctx, name)
	if err != nil {
		return fmt.Errorf("swap to %s: %w", name, err)
	}
	count, err := col.Count(ctx)
	if err != nil {
		return fmt.Errorf("swap to %s: count: %w", name, err)
	}
	if count == 0 {
		return fmt.Errorf("swap to %s: %w", name, domain.ErrEmptyCollectionRejected)
	}

	previous := v.Active()
	if previous == name {
		logger.Debug("Version %s is already active", name)
		return nil
	}

	now := v.now().UTC()
	version, err := v.record(ctx, name, now)
	if err != nil {
		return err
	}
	if version.State != domain.VersionValidated {
		if !version.State.CanTransitionTo(domain.VersionValidated) && version.State != domain.VersionActive {
			return fmt.Errorf("swap to %s: %w: %s -> %s",
				name, domain.ErrInvalidTransition, version.State, domain.VersionValidated)
		}
		version.State = domain.VersionValidated
	}
	version.EntryCount = count
	if err := v.store.Save(ctx, *version); err != nil {
		return fmt.Errorf("swap to %s: save validated: %w", name, err)
	}

	if err := v.store.SetActive(ctx, v.namespace, name); err != nil {
		return fmt.Errorf("swap to %s: persist pointer: %w", name, err)
	}
	v.active.Store(&name)

	version.State = domain.VersionActive
	version.PromotedAt = &now
	version.RetiredAt = nil
	if err := v.store.Save(ctx, *version); err != nil {
		logger.Warn("version: %s is active but its record was not updated: %v", name, err)
	}
	if previous != "" {
		v.retire(ctx, previous, now)
	}

	logger.Info("Active version for %s: %s (%d entries)", v.namespace, name, count)
	return nil
}

// Promote activates a version addressed by id or full collection name.
func (v *VersionManager) Promote(ctx context.Context, versionID string) (bool, error) {
	if strings.TrimSpace(versionID) == "" {
		return false, fmt.Errorf("promote: %w: empty version id", domain.ErrInvalidInput)
	}
	if err := v.AtomicSwap(ctx, v.CollectionName(versionID)); err != nil {
		return false, err
	}
	return true, nil
}

// Rollback re-activates the most recently retired version through the
// same checks as AtomicSwap.
func (v *VersionManager) Rollback(ctx context.Context) (*domain.Version, error) {
	versions, err := v.store.List(ctx, v.namespace)
	if err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}

	var target *domain.Version
	for i := range versions {
		c := &versions[i]
		if c.State != domain.VersionRetired || c.RetiredAt == nil {
			continue
		}
		if target == nil || c.RetiredAt.After(*target.RetiredAt) {
			target = c
		}
	}
	if target == nil {
		return nil, fmt.Errorf("rollback: %w", domain.ErrNoRollbackTarget)
	}

	if err := v.AtomicSwap(ctx, target.Name); err != nil {
		return nil, fmt.Errorf("rollback: %w", err)
	}
	return v.store.Get(ctx, target.Name)
}

// List returns all versions of the namespace, oldest first.
func (v *VersionManager) List(ctx context.Context) ([]domain.Version, error) {
	versions, err := v.store.List(ctx, v.namespace)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// record returns the stored version for name, or a new record for a
// collection that was populated without CreateVersion.
func (v *VersionManager) record(ctx context.Context, name string, now time.Time) (*domain.Version, error) {
	version, err := v.store.Get(ctx, name)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("swap to %s: %w", name, err)
	}
	return &domain.Version{
		Name:      name,
		Namespace: v.namespace,
		State:     domain.VersionBuilding,
		CreatedAt: now,
	}, nil
}

func (v *VersionManager) retire(ctx context.Context, name string, now time.Time) {
	prev, err := v.store.Get(ctx, name)
	if err != nil {
		logger.Warn("version: could not load previous version %s: %v", name, err)
		return
	}
	prev.State = domain.VersionRetired
	prev.RetiredAt = &now
	if err := v.store.Save(ctx, *prev); err != nil {
		logger.Warn("version: could not retire %s: %v", name, err)
	}
}

func (v *VersionManager) exists(ctx context.Context, name string) (bool, error) {
	if _, err := v.store.Get(ctx, name); err == nil {
		return true, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("look up version %s: %w", name, err)
	}
	if _, err := v.index.Collection(ctx, name); err == nil {
		return true, nil
	} else if !errors.Is(err, domain.ErrCollectionNotFound) {
		return false, fmt.Errorf("look up collection %s: %w", name, err)
	}
	return false, nil
}
