// Package chunker splits documents into overlapping word windows.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of words shared by neighbours.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor splits document content into word windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in words.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the number of words shared by consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor. It fails with
// domain.ErrInvalidConfiguration unless 0 <= overlap < size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := validate(p.chunkSize, p.overlap); err != nil {
		return nil, err
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size in words.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap in words.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts, err := Split(doc.Content, p.chunkSize, p.overlap)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			DocumentID: doc.ID,
			Position:   i,
			Content:    text,
			WordCount:  len(strings.Fields(text)),
		}
	}
	return chunks, nil
}

// Split cuts text into windows of size words, each sharing overlap words
// with the previous one. Every chunk is the slice of text from its first
// word to its last, so line breaks and spacing inside a window are kept;
// text of at most size words is one chunk, the whole trimmed text.
// Whitespace-only text yields no chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if err := validate(size, overlap); err != nil {
		return nil, err
	}

	words := wordSpans(text)
	n := len(words)
	if n == 0 {
		return nil, nil
	}

	stride := size - overlap
	chunks := make([]string, 0, Count(n, size, overlap))
	for start := 0; ; start += stride {
		end := min(start+size, n)
		chunks = append(chunks, text[words[start].from:words[end-1].to])
		if end >= n {
			break
		}
	}
	return chunks, nil
}

// span is the byte range of one word in a text.
type span struct{ from, to int }

// wordSpans locates the words strings.Fields would return.
func wordSpans(text string) []span {
	var spans []span
	from := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if from >= 0 {
				spans = append(spans, span{from, i})
				from = -1
			}
		} else if from < 0 {
			from = i
		}
	}
	if from >= 0 {
		spans = append(spans, span{from, len(text)})
	}
	return spans
}

// Count returns the number of chunks Split produces for n words:
// ceil((n - overlap) / (size - overlap)) for n > size.
func Count(n, size, overlap int) int {
	switch {
	case n <= 0:
		return 0
	case n <= size:
		return 1
	}
	stride := size - overlap
	return (n - overlap + stride - 1) / stride
}

func validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			domain.ErrInvalidConfiguration, size, overlap)
	}
	return nil
}
