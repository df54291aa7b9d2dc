package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
	"github.com/custodia-labs/sercha-rag/internal/vectormath"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// RelevanceFunc maps an L2 distance to a relevance score. Results are
// clamped to [0, 1] after the call.
type RelevanceFunc func(distance float64) float64

// LinearRelevance is 1 - distance. Vectors from normalised embedding models
// at distance 0 score 1, and anything at distance 1 or more scores 0.
func LinearRelevance(distance float64) float64 {
	return 1 - distance
}

// ActiveVersion reports the collection searches should read.
type ActiveVersion interface {
	Active() string
}

// SearchService answers similarity queries against the active version.
type SearchService struct {
	index     *VectorIndex
	embedder  *Embedder
	versions  ActiveVersion
	relevance RelevanceFunc
	topK      int
	preview   int
	metrics   *metrics.Metrics
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithRelevanceFunc replaces the distance to relevance mapping.
func WithRelevanceFunc(fn RelevanceFunc) SearchOption {
	return func(s *SearchService) {
		if fn != nil {
			s.relevance = fn
		}
	}
}

// WithDefaultTopK sets the result count used for non-positive topK.
func WithDefaultTopK(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.topK = n
		}
	}
}

// WithPreviewLength sets the preview length in characters.
func WithPreviewLength(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.preview = n
		}
	}
}

// WithSearchMetrics records query outcomes and latency.
func WithSearchMetrics(m *metrics.Metrics) SearchOption {
	return func(s *SearchService) {
		s.metrics = m
	}
}

// NewSearchService creates a search service.
func NewSearchService(
	index *VectorIndex, embedder *Embedder, versions ActiveVersion, opts ...SearchOption,
) *SearchService {
	s := &SearchService{
		index:     index,
		embedder:  embedder,
		versions:  versions,
		relevance: LinearRelevance,
		topK:      domain.DefaultTopK,
		preview:   domain.DefaultPreviewLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search embeds query and returns up to topK results from the active
// collection, most relevant first. No active version yields an empty
// list. Backend failures are reported as ErrRetrievalUnavailable.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	start := time.Now()
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	results, err := s.search(ctx, query, topK)
	switch {
	case err != nil:
		s.metrics.ObserveSearch(metrics.ResultError, time.Since(start))
	case len(results) == 0:
		s.metrics.ObserveSearch(metrics.ResultZeroResult, time.Since(start))
	default:
		s.metrics.ObserveSearch(metrics.ResultHit, time.Since(start))
	}
	return results, err
}

func (s *SearchService) search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if topK <= 0 {
		topK = s.topK
	}

	active := s.versions.Active()
	if active == "" {
		logger.Debug("No active version, returning no results")
		return []domain.SearchResult{}, nil
	}
	logger.Debug("Active collection: %s, topK: %d", active, topK)

	col, err := s.index.Collection(ctx, active)
	if err != nil {
		return nil, s.unavailable(ctx, active, err)
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}
	if emb.Degraded {
		logger.Warn("search: query embedding degraded, ranking is not meaningful")
		// The fallback length may not be the one stored in the collection.
		dim, err := col.Dimensions(ctx)
		if err != nil {
			return nil, s.unavailable(ctx, active, err)
		}
		if dim > 0 {
			emb.Vector = vectormath.Zero(dim)
		}
	}

	hits, err := col.Query(ctx, emb.Vector, topK)
	if err != nil {
		return nil, s.unavailable(ctx, active, err)
	}
	logger.Debug("Backend returned %d hits", len(hits))

	results := make([]domain.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = domain.SearchResult{
			Text:           h.Entry.Text,
			Metadata:       h.Entry.Metadata,
			Distance:       h.Distance,
			RelevanceScore: clamp01(s.relevance(h.Distance)),
			Preview:        Preview(h.Entry.Text, s.preview),
		}
	}
	return results, nil
}

func (s *SearchService) unavailable(ctx context.Context, collection string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, domain.ErrEmbeddingDimensionMismatch) {
		return fmt.Errorf("search %s: %w", collection, err)
	}
	return fmt.Errorf("search %s: %w: %w", collection, domain.ErrRetrievalUnavailable, err)
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x <= 0:
		return 0
	case x >= 1:
		return 1
	default:
		return x
	}
}
