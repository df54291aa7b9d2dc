// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ResultList displays search results in a navigable list.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// Update handles list navigation keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			r.selected = moveUp(r.selected)
		case tea.KeyDown:
			r.selected = moveDown(r.selected, len(r.results))
		}
	}
	return r, nil
}

// View renders the visible window of results.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := []string{r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), ""}

	// Each result takes three lines.
	start, end := window(r.selected, len(r.results), (r.height-2)/3)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := result.Metadata.Title
	if title == "" {
		title = result.Metadata.Source
	}
	maxTitle := max(r.width-16, 10)
	title = truncate(title, maxTitle)

	score := fmt.Sprintf("%.2f", result.RelevanceScore)
	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitle, title, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitle, title)) +
			r.styles.Score.Render(score)
	}

	source := fmt.Sprintf("    %s #%d", result.Metadata.Source, result.Metadata.ChunkIndex)
	sourceLine := r.styles.Muted.Render(truncate(source, r.width))
	if result.Metadata.Degraded {
		sourceLine += " " + r.styles.Warning.Render("[no embedding]")
	}

	preview := strings.ReplaceAll(result.Preview, "\n", " ")
	previewLine := r.styles.Normal.Render("    " + truncate(preview, max(r.width-6, 20)))

	return titleLine + "\n" + sourceLine + "\n" + previewLine
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

func moveUp(i int) int {
	if i > 0 {
		return i - 1
	}
	return i
}

func moveDown(i, n int) int {
	if i < n-1 {
		return i + 1
	}
	return i
}

// window returns the [start, end) range of visible rows keeping selected
// in view.
func window(selected, n, visible int) (int, int) {
	visible = max(visible, 1)
	start := 0
	if selected >= visible {
		start = selected - visible + 1
	}
	return start, min(start+visible, n)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
