package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
	"github.com/custodia-labs/sercha-rag/internal/vectormath"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// staleProbeBatch is how many chunk IDs are probed at a time when looking
// for entries left over from a longer previous version of a document.
const staleProbeBatch = 64

// IngestionService sanitizes, chunks, embeds and upserts documents.
type IngestionService struct {
	index     *VectorIndex
	embedder  *Embedder
	pipeline  driven.PostProcessorPipeline
	minLength int
	metrics   *metrics.Metrics
	now       func() time.Time
	active    ActiveVersion
}

// IngestOption configures an IngestionService.
type IngestOption func(*IngestionService)

// WithMinDocumentLength sets the sanitized length below which documents
// are skipped.
func WithMinDocumentLength(n int) IngestOption {
	return func(s *IngestionService) {
		if n >= 0 {
			s.minLength = n
		}
	}
}

// WithIngestMetrics records ingestion counts.
func WithIngestMetrics(m *metrics.Metrics) IngestOption {
	return func(s *IngestionService) {
		s.metrics = m
	}
}

// WithActiveVersion guards the collection searches read: Remove refuses to
// delete its last entries.
func WithActiveVersion(v ActiveVersion) IngestOption {
	return func(s *IngestionService) {
		s.active = v
	}
}

// WithIngestClock overrides the ingestion timestamp source.
func WithIngestClock(now func() time.Time) IngestOption {
	return func(s *IngestionService) {
		s.now = now
	}
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	index *VectorIndex,
	embedder *Embedder,
	pipeline driven.PostProcessorPipeline,
	opts ...IngestOption,
) *IngestionService {
	s := &IngestionService{
		index:     index,
		embedder:  embedder,
		pipeline:  pipeline,
		minLength: domain.DefaultMinDocumentLength,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest writes docs into collection. A failing document or chunk is
// recorded in the report and the run continues with the next one.
func (s *IngestionService) Ingest(
	ctx context.Context, docs []domain.Document, collection string,
) (*domain.IngestReport, error) {
	logger.Section("Ingestion")
	logger.Debug("Collection: %s, documents: %d", collection, len(docs))

	col, err := s.index.Open(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	report := &domain.IngestReport{Collection: collection}
	ingestedAt := s.now().UTC()
	ingested := 0

	for i := range docs {
		if err := ctx.Err(); err != nil {
			s.observe(report, ingested)
			return report, err
		}

		written, err := s.ingestOne(ctx, col, &docs[i], ingestedAt, report)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.observe(report, ingested)
				return report, ctxErr
			}
			logger.Warn("ingest: document %q: %v", docs[i].ID, err)
			report.AddFailure(domain.IngestFailure{
				DocumentID: docs[i].ID,
				Source:     docs[i].Source,
				ChunkIndex: domain.DocumentLevel,
				Err:        err,
			})
			continue
		}
		if written > 0 {
			ingested++
		}
	}

	s.observe(report, ingested)
	logger.Info("Ingested into %s: %d written, %d skipped, %d failed, %d degraded",
		collection, report.Written, report.Skipped, report.Failed, report.Degraded)
	return report, nil
}

// ingestOne processes a single document and returns the number of entries
// written. Chunk-level failures are added to report directly; a returned
// error is a document-level failure.
func (s *IngestionService) ingestOne(
	ctx context.Context,
	col *IndexCollection,
	doc *domain.Document,
	ingestedAt time.Time,
	report *domain.IngestReport,
) (int, error) {
	source := doc.SourceKey()
	if source == "" {
		return 0, fmt.Errorf("%w: document has neither source nor id", domain.ErrInvalidInput)
	}

	clean := *doc
	clean.Content = Sanitize(doc.Content)
	if n := CharCount(clean.Content); n < s.minLength {
		logger.Debug("Skipping %q: %d characters after sanitizing, minimum %d", source, n, s.minLength)
		report.Skipped++
		return 0, nil
	}

	chunks, err := s.pipeline.Process(ctx, &clean)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		report.Skipped++
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	// Vectors already in the collection fix the length new ones must have.
	want, err := col.Dimensions(ctx)
	if err != nil {
		return 0, fmt.Errorf("read dimensions: %w", err)
	}
	if want > 0 && !s.embedder.Seed(want) {
		logger.Warn("ingest: %s holds %d-dim vectors, the embedder produces %d",
			col.Name(), want, s.embedder.Dimensions())
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	var batchErr *BatchError
	if err != nil && !errors.As(err, &batchErr) {
		return 0, fmt.Errorf("embed: %w", err)
	}

	model := s.embedder.ModelName()
	entries := make([]domain.IndexEntry, 0, len(chunks))
	degraded := 0
	for i, c := range chunks {
		if batchErr != nil {
			if itemErr, failed := batchErr.Errs[i]; failed {
				report.AddFailure(domain.IngestFailure{
					DocumentID: doc.ID,
					Source:     doc.Source,
					ChunkIndex: c.Position,
					Err:        itemErr,
				})
				continue
			}
		}
		emb := embeddings[i]
		switch {
		case emb.Degraded && want > 0:
			emb.Vector = vectormath.Zero(want)
		case want > 0 && len(emb.Vector) != want:
			report.AddFailure(domain.IngestFailure{
				DocumentID: doc.ID,
				Source:     doc.Source,
				ChunkIndex: c.Position,
				Err: fmt.Errorf("%w: %s holds %d-dim vectors, chunk has %d",
					domain.ErrEmbeddingDimensionMismatch, col.Name(), want, len(emb.Vector)),
			})
			continue
		}
		if emb.Degraded {
			degraded++
		}
		entries = append(entries, domain.IndexEntry{
			ID:        domain.EntryID(source, c.Position),
			Embedding: emb.Vector,
			Text:      c.Content,
			Metadata: domain.EntryMetadata{
				Source:         source,
				Title:          doc.Title,
				Tags:           append([]string(nil), doc.Tags...),
				ChunkIndex:     c.Position,
				TotalChunks:    len(chunks),
				IngestedAt:     ingestedAt,
				EmbeddingModel: model,
				Degraded:       emb.Degraded,
			},
		})
	}

	if len(entries) == 0 {
		return 0, nil
	}
	if err := col.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	// Stored fallback vectors fix the length even before the provider answers.
	s.embedder.Seed(len(entries[0].Embedding))
	report.Written += len(entries)
	report.Degraded += degraded

	if removed, err := removeFrom(ctx, col, source, len(chunks)); err != nil {
		logger.Warn("ingest: removing stale chunks of %q: %v", source, err)
	} else if removed > 0 {
		logger.Debug("Removed %d stale chunks of %q", removed, source)
	}
	return len(entries), nil
}

// Remove deletes every entry written for source in collection. Removing
// the last entries of the active collection fails with
// ErrEmptyCollectionRejected and deletes nothing.
func (s *IngestionService) Remove(ctx context.Context, source, collection string) (int, error) {
	col, err := s.index.Collection(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("remove: %w", err)
	}
	if s.active == nil || s.active.Active() != collection {
		n, err := removeFrom(ctx, col, source, 0)
		if err != nil {
			return n, fmt.Errorf("remove %s: %w", source, err)
		}
		return n, nil
	}

	ids, err := entryIDs(ctx, col, source, 0)
	if err != nil {
		return 0, fmt.Errorf("remove %s: %w", source, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	count, err := col.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("remove %s: %w", source, err)
	}
	if count <= len(ids) {
		return 0, fmt.Errorf("remove %s from active %s: %w", source, collection, domain.ErrEmptyCollectionRejected)
	}
	if err := col.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("remove %s: %w", source, err)
	}
	return len(ids), nil
}

// removeFrom deletes the entries of source with chunk index >= start.
func removeFrom(ctx context.Context, col *IndexCollection, source string, start int) (int, error) {
	ids, err := entryIDs(ctx, col, source, start)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	if err := col.Delete(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// entryIDs lists the stored entry IDs of source with chunk index >= start.
// Chunk indices of one source are contiguous, so probing stops at the
// first batch that is not completely present.
func entryIDs(ctx context.Context, col *IndexCollection, source string, start int) ([]string, error) {
	var present []string
	for from := start; ; from += staleProbeBatch {
		ids := make([]string, staleProbeBatch)
		for i := range ids {
			ids[i] = domain.EntryID(source, from+i)
		}
		found, err := col.Get(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			present = append(present, e.ID)
		}
		if len(found) < staleProbeBatch {
			return present, nil
		}
	}
}

func (s *IngestionService) observe(report *domain.IngestReport, ingested int) {
	s.metrics.ObserveIngest(ingested, report.Skipped, report.Failed, report.Written)
}
