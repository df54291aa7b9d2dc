package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/vectormath"
)

// getBatch bounds the number of IDs bound into one IN clause.
const getBatch = 500

// ==================== Vector Backend ====================

// vectorBackend implements driven.VectorBackend.
type vectorBackend struct {
	store *Store
}

var _ driven.VectorBackend = (*vectorBackend)(nil)

// GetOrCreateCollection returns the named collection, creating it if needed.
func (b *vectorBackend) GetOrCreateCollection(ctx context.Context, name string) (driven.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}
	_, err := b.store.db.ExecContext(ctx, `
		INSERT INTO collections (name, dimensions, created_at)
		VALUES (?, 0, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, formatTime(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return &collection{store: b.store, name: name}, nil
}

// GetCollection returns an existing collection.
func (b *vectorBackend) GetCollection(ctx context.Context, name string) (driven.Collection, error) {
	var found string
	err := b.store.db.QueryRowContext(ctx, "SELECT name FROM collections WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return &collection{store: b.store, name: found}, nil
}

// ListCollections returns all collection names in lexical order.
func (b *vectorBackend) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := b.store.db.QueryContext(ctx, "SELECT name FROM collections ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return names, nil
}

// Close is a no-op; the owning Store closes the database.
func (b *vectorBackend) Close() error {
	return nil
}

// ==================== Collection ====================

// collection implements driven.Collection.
type collection struct {
	store *Store
	name  string
}

var _ driven.Collection = (*collection)(nil)

// Name returns the collection name.
func (c *collection) Name() string {
	return c.name
}

// Add stores entries, replacing any with the same ID.
// All vectors in a collection must share one dimensionality.
func (c *collection) Add(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var dim, count int
	err = tx.QueryRowContext(ctx, `
		SELECT dimensions, (SELECT COUNT(*) FROM entries WHERE collection = ?)
		FROM collections WHERE name = ?
	`, c.name, c.name).Scan(&dim, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, c.name)
	}
	if err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}
	if count == 0 {
		dim = 0
	}
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: entry without id", domain.ErrInvalidInput)
		}
		if dim == 0 {
			dim = len(e.Embedding)
		}
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: collection %s holds %d-dim vectors, entry %s has %d",
				domain.ErrEmbeddingDimensionMismatch, c.name, dim, e.ID, len(e.Embedding))
		}
	}

	// REPLACE assigns a new rowid, so a re-added entry ranks as the newest.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO entries (collection, id, text, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling entry metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.name, e.ID, e.Text,
			float64SliceToBytes(e.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("saving entry: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE collections SET dimensions = ? WHERE name = ?", dim, c.name); err != nil {
		return fmt.Errorf("updating collection dimensions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to topK entries nearest to vector. Every embedding of
// the collection is scanned; only the winners are loaded in full.
func (c *collection) Query(ctx context.Context, vector []float64, topK int) ([]domain.QueryHit, error) {
	if topK <= 0 {
		return []domain.QueryHit{}, nil
	}

	rows, err := c.store.db.QueryContext(ctx, `
		SELECT rowid, embedding FROM entries WHERE collection = ? ORDER BY rowid
	`, c.name)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	top := vectormath.NewTopK(topK)
	for rows.Next() {
		var (
			rowid int
			blob  []byte
		)
		if err := rows.Scan(&rowid, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		emb := bytesToFloat64Slice(blob)
		if len(emb) != len(vector) {
			return nil, fmt.Errorf("%w: query has %d dimensions, collection %s has %d",
				domain.ErrEmbeddingDimensionMismatch, len(vector), c.name, len(emb))
		}
		d, err := vectormath.L2Distance(vector, emb)
		if err != nil {
			return nil, err
		}
		top.Offer(vectormath.Candidate{Index: rowid, Distance: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}
	rows.Close()

	ranked := top.Sorted()
	hits := make([]domain.QueryHit, 0, len(ranked))
	for _, cand := range ranked {
		row := c.store.db.QueryRowContext(ctx, `
			SELECT id, text, embedding, metadata FROM entries WHERE rowid = ?
		`, cand.Index)
		entry, err := scanEntry(row)
		if errors.Is(err, sql.ErrNoRows) {
			// Replaced between the scan and the load.
			continue
		}
		if err != nil {
			return nil, err
		}
		hits = append(hits, domain.QueryHit{Entry: *entry, Distance: cand.Distance})
	}
	return hits, nil
}

// Delete removes entries by ID.
func (c *collection) Delete(ctx context.Context, ids []string) error {
	for start := 0; start < len(ids); start += getBatch {
		batch := ids[start:min(start+getBatch, len(ids))]
		args := make([]any, 0, len(batch)+1)
		args = append(args, c.name)
		for _, id := range batch {
			args = append(args, id)
		}
		query := "DELETE FROM entries WHERE collection = ? AND id IN (" + placeholders(len(batch)) + ")"
		if _, err := c.store.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("deleting entries: %w", err)
		}
	}
	return nil
}

// Get returns the entries with the given IDs in request order.
func (c *collection) Get(ctx context.Context, ids []string) ([]domain.IndexEntry, error) {
	found := make(map[string]domain.IndexEntry, len(ids))
	for start := 0; start < len(ids); start += getBatch {
		batch := ids[start:min(start+getBatch, len(ids))]
		args := make([]any, 0, len(batch)+1)
		args = append(args, c.name)
		for _, id := range batch {
			args = append(args, id)
		}
		query := "SELECT id, text, embedding, metadata FROM entries WHERE collection = ? AND id IN (" +
			placeholders(len(batch)) + ")"
		if err := c.collect(ctx, query, args, found); err != nil {
			return nil, err
		}
	}

	out := make([]domain.IndexEntry, 0, len(found))
	for _, id := range ids {
		if e, ok := found[id]; ok {
			out = append(out, e)
			delete(found, id)
		}
	}
	return out, nil
}

func (c *collection) collect(ctx context.Context, query string, args []any, into map[string]domain.IndexEntry) error {
	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return err
		}
		into[entry.ID] = *entry
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating entries: %w", err)
	}
	return nil
}

// Count returns the number of entries.
func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE collection = ?", c.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Dimensions returns the stored vector length, or 0 when empty.
func (c *collection) Dimensions(ctx context.Context) (int, error) {
	var dim, count int
	err := c.store.db.QueryRowContext(ctx, `
		SELECT dimensions, (SELECT COUNT(*) FROM entries WHERE collection = ?)
		FROM collections WHERE name = ?
	`, c.name, c.name).Scan(&dim, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, c.name)
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	return dim, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.IndexEntry, error) {
	var (
		entry        domain.IndexEntry
		blob         []byte
		metadataJSON string
	)
	if err := row.Scan(&entry.ID, &entry.Text, &blob, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning entry: %w", err)
	}
	entry.Embedding = bytesToFloat64Slice(blob)
	if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling entry metadata: %w", err)
	}
	return &entry, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
