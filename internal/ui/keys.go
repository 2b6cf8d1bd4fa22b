package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Task Actions
	Add      key.Binding
	Edit     key.Binding
	Complete key.Binding
	Delete   key.Binding
	Snooze   key.Binding
	History  key.Binding

	// Views
	ListView       key.Binding
	CategoriesView key.Binding
	SettingsView   key.Binding
	BackupView     key.Binding
	StatsView      key.Binding

	// General
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Back    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),

		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab", "c"),
			key.WithHelp("tab", "complete"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Snooze: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "snooze"),
		),
		History: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "history"),
		),

		ListView: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "tasks"),
		),
		CategoriesView: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "categories"),
		),
		SettingsView: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "settings"),
		),
		BackupView: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "backup"),
		),
		StatsView: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "stats"),
		),

		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Add, k.Edit, k.Complete, k.Delete, k.Snooze},
		{k.ListView, k.CategoriesView, k.SettingsView, k.BackupView, k.StatsView},
		{k.Refresh, k.Help, k.Quit},
	}
}
