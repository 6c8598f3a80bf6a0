// Package keymap binds keys to what they do on each screen of the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// Screen selects the hints shown in the status bar.
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenToday
	ScreenTrends
)

// Nav moves through lists and between screens.
type Nav struct {
	Up, Down, Select, Back key.Binding
}

// Day steps the date shown by the today and trends screens.
type Day struct {
	Prev, Next, Today, Refresh key.Binding
}

// Action decides on the pending micro-action.
type Action struct {
	Accept, Skip, Modify key.Binding
}

// KeyMap groups every binding. It satisfies help.KeyMap.
type KeyMap struct {
	Nav    Nav
	Day    Day
	Action Action

	Help key.Binding
	Quit key.Binding
	// ForceQuit works on every screen, including while typing.
	ForceQuit key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap uses vim-style movement next to the arrow keys.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Nav: Nav{
			Up:     bind("↑/k", "up", "up", "k"),
			Down:   bind("↓/j", "down", "down", "j"),
			Select: bind("enter", "open", "enter"),
			Back:   bind("esc", "back", "esc"),
		},
		Day: Day{
			Prev:    bind("←/h", "prev day", "left", "h"),
			Next:    bind("→/l", "next day", "right", "l"),
			Today:   bind("t", "today", "t"),
			Refresh: bind("r", "reload", "r"),
		},
		Action: Action{
			Accept: bind("a", "accept", "a"),
			Skip:   bind("s", "skip", "s"),
			Modify: bind("m", "modify", "m"),
		},
		Help:      bind("?", "keys", "?"),
		Quit:      bind("q", "quit", "q"),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// Hints returns the bindings worth a reminder on screen s.
func (k *KeyMap) Hints(s Screen) []key.Binding {
	switch s {
	case ScreenToday:
		return []key.Binding{k.Action.Accept, k.Action.Skip, k.Action.Modify, k.Day.Prev, k.Day.Next, k.Nav.Back}
	case ScreenTrends:
		return []key.Binding{k.Day.Prev, k.Day.Next, k.Day.Today, k.Day.Refresh, k.Nav.Back}
	default:
		return []key.Binding{k.Nav.Up, k.Nav.Down, k.Nav.Select, k.Help, k.Quit}
	}
}

// ShortHelp lists the bindings that work everywhere.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Nav.Back, k.Quit}
}

// FullHelp lists every binding, one column per group.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Nav.Up, k.Nav.Down, k.Nav.Select, k.Nav.Back},
		{k.Day.Prev, k.Day.Next, k.Day.Today, k.Day.Refresh},
		{k.Action.Accept, k.Action.Skip, k.Action.Modify},
		{k.Help, k.Quit},
	}
}
