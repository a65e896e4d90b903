package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/TimelordUK/logview/internal/config"
)

// KeyMap holds the widget's bindings
type KeyMap struct {
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Search     key.Binding
	Submit     key.Binding
	ShowAll    key.Binding
	Fullscreen key.Binding
	SelectUp   key.Binding
	SelectDown key.Binding
	Escape     key.Binding
}

// NewKeyMap builds bindings from config
func NewKeyMap(kb config.KeybindingConfig) KeyMap {
	return KeyMap{
		Quit:       binding(kb.Quit, "q", "quit"),
		ScrollUp:   binding(kb.ScrollUp, "k", "up"),
		ScrollDown: binding(kb.ScrollDown, "j", "down"),
		PageUp:     binding(kb.PageUp, "pgup", "page up"),
		PageDown:   binding(kb.PageDown, "pgdn", "page down"),
		Top:        binding(kb.Top, "g", "top"),
		Bottom:     binding(kb.Bottom, "G", "bottom"),
		Search:     binding(kb.Search, "/", "search"),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show all")),
		ShowAll:    binding(kb.ShowAll, "a", "show all"),
		Fullscreen: binding(kb.Fullscreen, "z", "fullscreen"),
		SelectUp:   binding(kb.SelectUp, "↑", "select"),
		SelectDown: binding(kb.SelectDown, "↓", "select"),
		Escape:     binding(kb.Escape, "esc", "back"),
	}
}

func binding(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ScrollDown, k.ScrollUp, k.PageDown, k.Top, k.Bottom, k.Search, k.ShowAll, k.Fullscreen, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollDown, k.ScrollUp, k.PageDown, k.PageUp, k.Top, k.Bottom},
		{k.Search, k.Submit, k.ShowAll, k.Escape},
		{k.SelectUp, k.SelectDown, k.Fullscreen, k.Quit},
	}
}
