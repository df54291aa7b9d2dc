// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application. Only ctrl+c while the query input has focus.
	Quit key.Binding

	// Search submits the query.
	Search key.Binding

	// Switch toggles between the search and versions views.
	Switch key.Binding

	Up   key.Binding
	Down key.Binding

	// Promote activates the selected version.
	Promote key.Binding

	// Rollback re-activates the most recently retired version.
	Rollback key.Binding

	// Refresh reloads the version list.
	Refresh key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Promote: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "promote"),
		),
		Rollback: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rollback"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
	}
}

// SearchHelp returns the hints shown in the search view.
func (k *KeyMap) SearchHelp() []key.Binding {
	return []key.Binding{k.Search, k.Switch, k.Up, k.Down}
}

// VersionsHelp returns the hints shown in the versions view.
func (k *KeyMap) VersionsHelp() []key.Binding {
	return []key.Binding{k.Promote, k.Rollback, k.Refresh, k.Switch, k.Quit}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
