package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// ==================== Version Store ====================

// versionStore implements driven.VersionStore.
type versionStore struct {
	store *Store
}

var _ driven.VersionStore = (*versionStore)(nil)

// Save creates or updates a version record.
func (s *versionStore) Save(ctx context.Context, v domain.Version) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO versions (name, namespace, state, entry_count, created_at, promoted_at, retired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			namespace = excluded.namespace,
			state = excluded.state,
			entry_count = excluded.entry_count,
			created_at = excluded.created_at,
			promoted_at = excluded.promoted_at,
			retired_at = excluded.retired_at
	`, v.Name, v.Namespace, string(v.State), v.EntryCount, formatTime(v.CreatedAt),
		formatNullTime(v.PromotedAt), formatNullTime(v.RetiredAt))
	if err != nil {
		return fmt.Errorf("saving version: %w", err)
	}
	return nil
}

// Get returns a version by name.
func (s *versionStore) Get(ctx context.Context, name string) (*domain.Version, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT name, namespace, state, entry_count, created_at, promoted_at, retired_at
		FROM versions WHERE name = ?
	`, name)
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

// List returns all versions of a namespace, oldest first.
func (s *versionStore) List(ctx context.Context, namespace string) ([]domain.Version, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, namespace, state, entry_count, created_at, promoted_at, retired_at
		FROM versions WHERE namespace = ?
		ORDER BY created_at, name
	`, namespace)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	versions := make([]domain.Version, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return versions, nil
}

// SetActive records the active collection of a namespace.
func (s *versionStore) SetActive(ctx context.Context, namespace, name string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO active_versions (namespace, name, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`, namespace, name, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("setting active version: %w", err)
	}
	return nil
}

// Active returns the active collection of a namespace, or "" when none.
func (s *versionStore) Active(ctx context.Context, namespace string) (string, error) {
	var name string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT name FROM active_versions WHERE namespace = ?", namespace).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting active version: %w", err)
	}
	return name, nil
}

func scanVersion(row scanner) (*domain.Version, error) {
	var (
		v                 domain.Version
		state, created    string
		promoted, retired sql.NullString
	)
	if err := row.Scan(&v.Name, &v.Namespace, &state, &v.EntryCount, &created, &promoted, &retired); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning version: %w", err)
	}
	v.State = domain.VersionState(state)

	var err error
	if v.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if v.PromotedAt, err = parseNullTime(promoted); err != nil {
		return nil, err
	}
	if v.RetiredAt, err = parseNullTime(retired); err != nil {
		return nil, err
	}
	return &v, nil
}
