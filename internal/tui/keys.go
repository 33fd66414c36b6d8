package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start     key.Binding
	Stop      key.Binding
	Fewer     key.Binding
	More      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop"),
		),
		Fewer: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←/h", "fewer words"),
		),
		More: key.NewBinding(
			key.WithKeys("right", "l", "+", "="),
			key.WithHelp("→/l", "more words"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// setTyping enables the bindings that make sense while the text field owns
// the keyboard, and disables the rest.
func (k *keyMap) setTyping(typing bool) {
	k.Start.SetEnabled(!typing)
	k.Fewer.SetEnabled(!typing)
	k.More.SetEnabled(!typing)
	k.Help.SetEnabled(!typing)
	k.Quit.SetEnabled(!typing)
	k.Stop.SetEnabled(typing)
	k.ForceQuit.SetEnabled(typing)
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Fewer, k.More, k.Help, k.Quit, k.ForceQuit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
