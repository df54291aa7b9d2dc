package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{RelevanceScore: 0.95, Preview: "first", Metadata: domain.EntryMetadata{Title: "Document One", Source: "/a.md"}},
		{RelevanceScore: 0.85, Preview: "second", Metadata: domain.EntryMetadata{Title: "Document Two", Source: "/b.md", ChunkIndex: 1}},
		{RelevanceScore: 0.75, Preview: "third", Metadata: domain.EntryMetadata{Source: "/c.txt", Degraded: true}},
	}
}

func TestResultList_Empty(t *testing.T) {
	list := NewResultList(nil)

	assert.Nil(t, list.SelectedResult())
	assert.Contains(t, list.View(), "No results")
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, list.Selected(), "stops at the last result")

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.NotNil(t, list.SelectedResult())
	assert.Equal(t, "Document Two", list.SelectedResult().Metadata.Title)

	list.SetResults(sampleResults())
	assert.Equal(t, 0, list.Selected(), "new results reset the selection")
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(80, 30)
	list.SetResults(sampleResults())

	view := list.View()
	assert.Contains(t, view, "Results (3)")
	assert.Contains(t, view, "Document One")
	assert.Contains(t, view, "0.95")
	assert.Contains(t, view, "/b.md #1")
	assert.Contains(t, view, "/c.txt")
	assert.Contains(t, view, "[no embedding]")
}

func TestResultList_WindowFollowsSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(80, 5) // one result visible
	list.SetResults(sampleResults())

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	view := list.View()
	assert.Contains(t, view, "Document Two")
	assert.NotContains(t, view, "Document One")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n))
	}
}

func TestVersionList(t *testing.T) {
	list := NewVersionList(nil)
	assert.Nil(t, list.SelectedVersion())
	assert.Contains(t, list.View(), "No versions yet")

	list.SetVersions([]domain.Version{
		{Name: "docs_v1", State: domain.VersionRetired, EntryCount: 4},
		{Name: "docs_v2", State: domain.VersionActive, EntryCount: 9},
	}, "docs_v2")

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	require.NotNil(t, list.SelectedVersion())
	assert.Equal(t, "docs_v2", list.SelectedVersion().Name)

	view := list.View()
	assert.Contains(t, view, "Versions (2)")
	assert.True(t, strings.Contains(view, "retired") && strings.Contains(view, "active"))

	list.SetVersions([]domain.Version{{Name: "docs_v1"}}, "")
	assert.Equal(t, "docs_v1", list.SelectedVersion().Name, "selection is clamped")
}
