package searchfield

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"geosearch/internal/ui/selection"
)

// KeyMap defines the keys the dropdown reacts to.
type KeyMap struct {
	Down   key.Binding
	Up     key.Binding
	Select key.Binding
	Close  key.Binding
	Commit key.Binding
}

// DefaultKeyMap returns the standard dropdown bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select / search again"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Commit: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "take highlighted"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Select, k.Close}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up},
		{k.Select, k.Commit, k.Close},
	}
}

func (k KeyMap) resolve(msg tea.KeyMsg) selection.Key {
	switch {
	case key.Matches(msg, k.Down):
		return selection.KeyDown
	case key.Matches(msg, k.Up):
		return selection.KeyUp
	case key.Matches(msg, k.Select):
		return selection.KeyEnter
	case key.Matches(msg, k.Close):
		return selection.KeyEscape
	case key.Matches(msg, k.Commit):
		return selection.KeyTab
	}
	return selection.KeyNone
}
