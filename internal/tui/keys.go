package tui

import "charm.land/bubbles/v2/key"

// KeyMap defines the keybindings of the menu
type KeyMap struct {
	Mode       key.Binding
	Caffeinate key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "switch mode"),
		),
		Caffeinate: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "caffeinate"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
