package list

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func sampleVersions() []domain.Version {
	return []domain.Version{
		{Name: "docs_20260101", State: domain.VersionRetired, EntryCount: 12},
		{Name: "docs_20260201", State: domain.VersionActive, EntryCount: 15},
		{Name: "docs_20260301", State: domain.VersionBuilding},
	}
}

func TestVersionList_Empty(t *testing.T) {
	list := NewVersionList(nil)

	assert.Nil(t, list.SelectedVersion())
	assert.Contains(t, list.View(), "No versions yet")
}

func TestVersionList_RendersRows(t *testing.T) {
	list := NewVersionList(nil)
	list.SetVersions(sampleVersions(), "docs_20260201")

	view := list.View()
	assert.Contains(t, view, "Versions (3)")
	assert.Contains(t, view, "docs_20260101")
	assert.Contains(t, view, "building")
	assert.Equal(t, "docs_20260201", list.Active())
}

func TestVersionList_Navigation(t *testing.T) {
	list := NewVersionList(nil)
	list.SetVersions(sampleVersions(), "")

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	require.NotNil(t, list.SelectedVersion())
	assert.Equal(t, "docs_20260301", list.SelectedVersion().Name)

	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, "docs_20260201", list.SelectedVersion().Name)
}

func TestVersionList_SetVersionsClampsSelection(t *testing.T) {
	list := NewVersionList(nil)
	list.SetVersions(sampleVersions(), "")
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list, _ = list.Update(tea.KeyMsg{Type: tea.KeyDown})

	list.SetVersions(sampleVersions()[:1], "")
	require.NotNil(t, list.SelectedVersion())
	assert.Equal(t, "docs_20260101", list.SelectedVersion().Name)

	list.SetVersions(nil, "")
	assert.Nil(t, list.SelectedVersion())
}
