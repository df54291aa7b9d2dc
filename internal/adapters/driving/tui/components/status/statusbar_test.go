package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
)

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		count   int
		want    string
	}{
		{"ready", StateReady, "", 0, "Ready"},
		{"ready with message", StateReady, "Promoted docs_v2", 0, "Promoted docs_v2"},
		{"searching", StateSearching, "", 0, "Searching..."},
		{"results", StateResults, "", 4, "4 results"},
		{"error", StateError, "backend gone", 0, "Error: backend gone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil)
			bar.SetWidth(120)
			bar.SetState(tt.state, tt.message)
			bar.SetResultCount(tt.count)

			assert.Contains(t, bar.View(), tt.want)
			assert.Equal(t, tt.state, bar.State())
		})
	}
}

func TestBar_ActiveVersionAndHints(t *testing.T) {
	bar := NewBar(nil)
	bar.SetWidth(160)

	assert.Contains(t, bar.View(), "[no active version]")

	bar.SetActive("docs_v3")
	bar.SetHints(keymap.DefaultKeyMap().VersionsHelp())
	view := bar.View()
	assert.Contains(t, view, "[docs_v3]")
	assert.Contains(t, view, "p: promote")
}
