package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// VersionList displays the versions of a namespace.
type VersionList struct {
	versions []domain.Version
	active   string
	selected int
	styles   *styles.Styles
	height   int
}

// NewVersionList creates a new version list component.
func NewVersionList(s *styles.Styles) *VersionList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &VersionList{styles: s, height: 10}
}

// Update handles j/k and arrow navigation.
func (v *VersionList) Update(msg tea.Msg) (*VersionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			v.selected = moveUp(v.selected)
		case "down", "j":
			v.selected = moveDown(v.selected, len(v.versions))
		}
	}
	return v, nil
}

// View renders the version table, newest last.
func (v *VersionList) View() string {
	if len(v.versions) == 0 {
		return v.styles.Muted.Render("No versions yet. Run 'sercha-rag ingest --new <path>'.")
	}

	lines := []string{
		v.styles.Subtitle.Render(fmt.Sprintf("Versions (%d)", len(v.versions))),
		"",
		v.styles.Muted.Render(fmt.Sprintf("  %-36s %-10s %8s", "NAME", "STATE", "ENTRIES")),
	}
	start, end := window(v.selected, len(v.versions), v.height-3)
	for i := start; i < end; i++ {
		ver := &v.versions[i]
		prefix := "  "
		if i == v.selected {
			prefix = "> "
		}
		row := fmt.Sprintf("%s%-36s %-10s %8d", prefix, truncate(ver.Name, 36), ver.State, ver.EntryCount)
		switch {
		case i == v.selected:
			row = v.styles.Selected.Render(row)
		case ver.Name == v.active:
			row = v.styles.Success.Render(row)
		default:
			row = v.styles.Normal.Render(row)
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

// SetVersions replaces the list, keeping the selection in range.
func (v *VersionList) SetVersions(versions []domain.Version, active string) {
	v.versions = versions
	v.active = active
	if v.selected >= len(versions) {
		v.selected = max(len(versions)-1, 0)
	}
}

// SelectedVersion returns the selected version, or nil if none.
func (v *VersionList) SelectedVersion() *domain.Version {
	if v.selected < 0 || v.selected >= len(v.versions) {
		return nil
	}
	return &v.versions[v.selected]
}

// Active returns the active collection name.
func (v *VersionList) Active() string {
	return v.active
}

// SetHeight sets the number of rows available.
func (v *VersionList) SetHeight(height int) {
	v.height = height
}
