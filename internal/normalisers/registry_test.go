package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

type stubNormaliser struct {
	name     string
	types    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.types }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	return &domain.Document{ID: s.name, Source: raw.URI}, nil
}

func TestRegistry_PrefersHigherPriority(t *testing.T) {
	fallback := &stubNormaliser{name: "fallback", types: []string{"text/plain", "text/markdown"}, priority: 5}
	specific := &stubNormaliser{name: "markdown", types: []string{"text/markdown"}, priority: 50}
	reg := NewRegistry(fallback, specific)

	doc, err := reg.Normalise(context.Background(), &domain.RawDocument{URI: "/a.md", MIMEType: "text/markdown"})
	require.NoError(t, err)
	assert.Equal(t, "markdown", doc.ID)

	doc, err = reg.Normalise(context.Background(), &domain.RawDocument{URI: "/a.txt", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", doc.ID)
}

func TestRegistry_MIMEParameters(t *testing.T) {
	reg := NewRegistry(&stubNormaliser{name: "plain", types: []string{"text/plain"}, priority: 5})

	assert.True(t, reg.Supports("text/plain; charset=utf-8"))
	assert.True(t, reg.Supports("TEXT/PLAIN"))
	assert.False(t, reg.Supports("application/pdf"))
}

func TestRegistry_Unsupported(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Normalise(context.Background(), &domain.RawDocument{MIMEType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reg.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_SupportedMIMETypes(t *testing.T) {
	reg := NewRegistry(
		&stubNormaliser{types: []string{"text/plain", "text/markdown"}, priority: 5},
		&stubNormaliser{types: []string{"text/markdown"}, priority: 50},
	)

	assert.Equal(t, []string{"text/markdown", "text/plain"}, reg.SupportedMIMETypes())
}

func TestTags(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		expected []string
	}{
		{"string slice", map[string]any{"tags": []string{"a", "b"}}, []string{"a", "b"}},
		{"any slice", map[string]any{"tags": []any{"a", 3, ""}}, []string{"a"}},
		{"single string", map[string]any{"tags": "solo"}, []string{"solo"}},
		{"empty string", map[string]any{"tags": ""}, nil},
		{"missing", nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tags(tc.metadata))
		})
	}
}

func TestDocumentIDAndTitle(t *testing.T) {
	raw := &domain.RawDocument{URI: "/docs/my-first_note.txt"}
	assert.NotEmpty(t, DocumentID(raw))
	assert.NotEqual(t, DocumentID(raw), DocumentID(raw))
	assert.Equal(t, "my first note", Title(raw))

	raw.Metadata = map[string]any{"id": "fixed", "title": "Set"}
	assert.Equal(t, "fixed", DocumentID(raw))
	assert.Equal(t, "Set", Title(raw))
}
