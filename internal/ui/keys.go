package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the monitor reacts to.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding

	ViewQueue   key.Binding
	ViewSystem  key.Binding
	ViewHistory key.Binding
	ViewLogs    key.Binding

	Interrupt key.Binding
	Confirm   key.Binding
	Refresh   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		ViewQueue: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "queue"),
		),
		ViewSystem: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "system"),
		),
		ViewHistory: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "history"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "interrupt"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// shortHelp lists the bindings shown in the command bar.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.ViewQueue, k.ViewSystem, k.ViewHistory, k.ViewLogs, k.Interrupt, k.Refresh, k.Help, k.Quit}
}
