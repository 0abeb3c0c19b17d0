package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// Calendar navigation
	PrevDay  key.Binding
	NextDay  key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding

	// Chart list
	Select key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	PrevDay:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "prev day")),
	NextDay:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "next day")),
	PrevWeek: key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "prev week")),
	NextWeek: key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "next week")),

	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select chart")),
}
