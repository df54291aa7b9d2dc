package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/metrics"
	"github.com/custodia-labs/sercha-rag/internal/vectormath"
)

// probeText is embedded once at startup to learn the model's dimensionality.
const probeText = "dimension probe"

var errEmptyEmbedding = errors.New("empty embedding")

// Embedder wraps an EmbeddingProvider with the fallback and concurrency
// rules of the engine:
//
//   - provider failures yield a zero vector flagged Degraded instead of an error
//   - vectors of the wrong length are rejected with ErrEmbeddingDimensionMismatch
//   - batches run on a bounded worker pool and keep input order
type Embedder struct {
	provider driven.EmbeddingProvider
	workers  int
	limiter  *rate.Limiter
	metrics  *metrics.Metrics

	fallbackDim int
	dim         atomic.Int64
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithWorkers bounds concurrent provider calls in EmbedBatch.
func WithWorkers(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithFallbackDimensions sets the zero-vector length used until the
// dimensionality is discovered.
func WithFallbackDimensions(n int) EmbedderOption {
	return func(e *Embedder) {
		if n > 0 {
			e.fallbackDim = n
		}
	}
}

// WithRateLimit limits provider calls to rps per second. Zero disables it.
func WithRateLimit(rps float64) EmbedderOption {
	return func(e *Embedder) {
		if rps > 0 {
			burst := max(int(rps), 1)
			e.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithEmbedderMetrics records embedding outcomes.
func WithEmbedderMetrics(m *metrics.Metrics) EmbedderOption {
	return func(e *Embedder) {
		e.metrics = m
	}
}

// NewEmbedder creates an embedder over provider.
func NewEmbedder(provider driven.EmbeddingProvider, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		provider:    provider,
		workers:     domain.DefaultEmbedWorkers,
		fallbackDim: domain.DefaultDimensions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Discover embeds a probe string and fixes the dimensionality from the
// response. When the provider is unreachable the dimensionality stays open
// until Seed or the first successful response fixes it; until then
// fallback vectors use the configured length.
func (e *Embedder) Discover(ctx context.Context) int {
	vec, err := e.call(ctx, probeText)
	if err != nil || len(vec) == 0 {
		logger.Warn("embedding: dimension probe failed, using %d until the provider responds: %v",
			e.fallbackDim, probeError(err))
		return e.Dimensions()
	}
	e.dim.CompareAndSwap(0, int64(len(vec)))
	logger.Info("embedding: model %s produces %d-dimensional vectors", e.provider.ModelName(), e.Dimensions())
	return e.Dimensions()
}

// Seed fixes the dimensionality to n if it is still open, as when vectors
// of length n are already stored. It reports whether the dimensionality is
// n afterwards.
func (e *Embedder) Seed(n int) bool {
	if n <= 0 {
		return false
	}
	if e.dim.CompareAndSwap(0, int64(n)) {
		logger.Debug("embedding: dimensionality fixed at %d by stored vectors", n)
		return true
	}
	return e.Dimensions() == n
}

// Dimensions returns the discovered dimensionality, or the fallback when
// nothing has been discovered yet.
func (e *Embedder) Dimensions() int {
	if d := e.dim.Load(); d > 0 {
		return int(d)
	}
	return e.fallbackDim
}

// ModelName returns the provider's model name.
func (e *Embedder) ModelName() string {
	return e.provider.ModelName()
}

// Embed embeds one text. Provider failures are not errors: the result is a
// zero vector with Degraded set. The only errors are a cancelled context
// and ErrEmbeddingDimensionMismatch.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Embedding, error) {
	if err := ctx.Err(); err != nil {
		return domain.Embedding{}, err
	}

	vec, err := e.call(ctx, text)
	if err == nil && len(vec) == 0 {
		err = errEmptyEmbedding
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Embedding{}, ctxErr
		}
		logger.Warn("embedding: provider failed, storing zero vector: %v", err)
		e.metrics.ObserveEmbedding(metrics.OutcomeDegraded)
		return domain.Embedding{Vector: vectormath.Zero(e.Dimensions()), Degraded: true}, nil
	}

	e.dim.CompareAndSwap(0, int64(len(vec)))
	if want := e.Dimensions(); len(vec) != want {
		e.metrics.ObserveEmbedding(metrics.OutcomeDimensionMismatch)
		return domain.Embedding{}, fmt.Errorf("%w: expected %d, got %d",
			domain.ErrEmbeddingDimensionMismatch, want, len(vec))
	}

	e.metrics.ObserveEmbedding(metrics.OutcomeOK)
	return domain.Embedding{Vector: vec}, nil
}

// EmbedBatch embeds texts on at most the configured number of concurrent
// workers. Result i always belongs to texts[i]. Items that fail are left
// empty and reported through a *BatchError; the other items are still
// returned.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	results := make([]domain.Embedding, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	var (
		mu     sync.Mutex
		failed = make(map[int]error)
	)

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, text := range texts {
		g.Go(func() error {
			emb, err := e.Embed(ctx, text)
			if err != nil {
				mu.Lock()
				failed[i] = err
				mu.Unlock()
				return nil
			}
			results[i] = emb
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		return results, &BatchError{Errs: failed}
	}
	return results, nil
}

// Ping checks the provider is reachable.
func (e *Embedder) Ping(ctx context.Context) error {
	return e.provider.Ping(ctx)
}

// Close releases the provider.
func (e *Embedder) Close() error {
	return e.provider.Close()
}

func (e *Embedder) call(ctx context.Context, text string) ([]float64, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return e.provider.Embed(ctx, text)
}

func probeError(err error) error {
	if err == nil {
		return errEmptyEmbedding
	}
	return err
}

// BatchError reports the items of a batch that could not be embedded,
// keyed by input index.
type BatchError struct {
	Errs map[int]error
}

// Error implements error.
func (b *BatchError) Error() string {
	idx := b.indices()
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("item %d: %v", i, b.Errs[i]))
	}
	return fmt.Sprintf("embedding batch: %d failed: %s", len(idx), strings.Join(parts, "; "))
}

// Unwrap returns the item errors in index order.
func (b *BatchError) Unwrap() []error {
	idx := b.indices()
	errs := make([]error, len(idx))
	for n, i := range idx {
		errs[n] = b.Errs[i]
	}
	return errs
}

func (b *BatchError) indices() []int {
	idx := make([]int, 0, len(b.Errs))
	for i := range b.Errs {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}
