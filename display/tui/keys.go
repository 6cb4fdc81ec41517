package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings for the overlay.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	View        key.Binding
	Scale       key.Binding
	Slower      key.Binding
	Faster      key.Binding
	OpacityDown key.Binding
	OpacityUp   key.Binding
	Export      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.View, k.Scale, k.Help, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.View, k.Scale, k.Export},
		{k.Slower, k.Faster, k.OpacityDown, k.OpacityUp},
		{k.Help, k.Quit},
	}
}

// keys holds the default key bindings used by the overlay.
var keys = keyMap{
	View:        key.NewBinding(key.WithKeys("v", "tab"), key.WithHelp("v", "gauge/histogram")),
	Scale:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log/linear")),
	Slower:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "interval +250ms")),
	Faster:      key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "interval -250ms")),
	OpacityDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "opacity -5%")),
	OpacityUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "opacity +5%")),
	Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}
