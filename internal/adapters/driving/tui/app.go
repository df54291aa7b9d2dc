package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// App is the TUI model. It has a search view and a versions view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap

	input    *input.SearchInput
	results  *list.ResultList
	versions *list.VersionList
	bar      *status.Bar

	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s)
	bar.SetHints(km.SearchHelp())
	bar.SetActive(ports.Versions.Active())

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keys:        km,
		input:       input.NewSearchInput(s),
		results:     list.NewResultList(s),
		versions:    list.NewVersionList(s),
		bar:         bar,
		currentView: messages.ViewSearch,
	}, nil
}

// WithContext sets the context passed to service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		a.loadVersions(),
		tea.SetWindowTitle("sercha-rag"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.SearchCompleted:
		if msg.Err != nil {
			a.bar.SetState(status.StateError, msg.Err.Error())
			return a, nil
		}
		a.results.SetResults(msg.Results)
		a.bar.SetResultCount(len(msg.Results))
		a.bar.SetState(status.StateResults, "")
		return a, nil

	case messages.VersionsLoaded:
		if msg.Err != nil {
			a.bar.SetState(status.StateError, msg.Err.Error())
			return a, nil
		}
		a.versions.SetVersions(msg.Versions, msg.Active)
		a.bar.SetActive(msg.Active)
		return a, nil

	case messages.VersionChanged:
		if msg.Err != nil {
			a.bar.SetState(status.StateError, msg.Err.Error())
			return a, nil
		}
		a.bar.SetActive(msg.Active)
		a.bar.SetState(status.StateReady, "Active version: "+msg.Active)
		return a, a.loadVersions()
	}

	if a.currentView == messages.ViewSearch {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		return a, tea.Quit
	}
	if keymap.Matches(keyStr, a.keys.Switch) {
		return a, a.switchView()
	}

	if a.currentView == messages.ViewVersions {
		switch {
		case keymap.Matches(keyStr, a.keys.Quit):
			return a, tea.Quit
		case keymap.Matches(keyStr, a.keys.Promote):
			if v := a.versions.SelectedVersion(); v != nil {
				return a, a.promote(v.Name)
			}
			return a, nil
		case keymap.Matches(keyStr, a.keys.Rollback):
			return a, a.rollback()
		case keymap.Matches(keyStr, a.keys.Refresh):
			return a, a.loadVersions()
		}
		var cmd tea.Cmd
		a.versions, cmd = a.versions.Update(msg)
		return a, cmd
	}

	//nolint:exhaustive // only keys the search view reacts to
	switch msg.Type {
	case tea.KeyEnter:
		query := strings.TrimSpace(a.input.Value())
		if query == "" {
			return a, nil
		}
		a.bar.SetState(status.StateSearching, "")
		return a, a.search(query)
	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) switchView() tea.Cmd {
	if a.currentView == messages.ViewSearch {
		a.currentView = messages.ViewVersions
		a.input.Blur()
		a.bar.SetHints(a.keys.VersionsHelp())
		return a.loadVersions()
	}
	a.currentView = messages.ViewSearch
	a.bar.SetHints(a.keys.SearchHelp())
	return a.input.Focus()
}

func (a *App) search(query string) tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Search
	return func() tea.Msg {
		results, err := svc.Search(ctx, query, 0)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (a *App) loadVersions() tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Versions
	return func() tea.Msg {
		versions, err := svc.List(ctx)
		return messages.VersionsLoaded{Active: svc.Active(), Versions: versions, Err: err}
	}
}

func (a *App) promote(name string) tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Versions
	return func() tea.Msg {
		_, err := svc.Promote(ctx, name)
		return messages.VersionChanged{Active: svc.Active(), Err: err}
	}
}

func (a *App) rollback() tea.Cmd {
	ctx := a.ctx
	svc := a.ports.Versions
	return func() tea.Msg {
		v, err := svc.Rollback(ctx)
		if err != nil {
			return messages.VersionChanged{Err: err}
		}
		return messages.VersionChanged{Active: v.Name}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("sercha-rag") + "  " +
		a.styles.Muted.Render(a.ports.Versions.Namespace())

	var body string
	if a.currentView == messages.ViewVersions {
		body = a.versions.View()
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, a.input.View(), "", a.results.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, "", body)
	gap := max(a.height-lipgloss.Height(content)-1, 0)
	return content + strings.Repeat("\n", gap+1) + a.bar.View()
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Results returns the result list component.
func (a *App) Results() *list.ResultList {
	return a.results
}

// Versions returns the version list component.
func (a *App) Versions() *list.VersionList {
	return a.versions
}

// Status returns the status bar component.
func (a *App) Status() *status.Bar {
	return a.bar
}

// SetDimensions sizes every component.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.results.SetDimensions(width, max(height-8, 4))
	a.versions.SetHeight(max(height-6, 4))
	a.bar.SetWidth(width)
}
