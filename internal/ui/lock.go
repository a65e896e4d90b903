package ui

import tea "github.com/charmbracelet/bubbletea"

// PageLock is the host capability that stops the surrounding page from
// scrolling while the widget is fullscreen. Both calls return the command
// that performs the change.
type PageLock interface {
	Lock() tea.Cmd
	Unlock() tea.Cmd
}

// AltScreenLock takes over the terminal's alternate screen
type AltScreenLock struct{}

// Lock implements PageLock
func (AltScreenLock) Lock() tea.Cmd { return tea.EnterAltScreen }

// Unlock implements PageLock
func (AltScreenLock) Unlock() tea.Cmd { return tea.ExitAltScreen }

// NopLock does nothing, for hosts that already own the whole screen
type NopLock struct{}

// Lock implements PageLock
func (NopLock) Lock() tea.Cmd { return nil }

// Unlock implements PageLock
func (NopLock) Unlock() tea.Cmd { return nil }
