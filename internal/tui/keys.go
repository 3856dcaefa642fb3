package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Press     key.Binding
	Increment key.Binding
	Decrement key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Press:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "press")),
		Increment: key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "increment")),
		Decrement: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "decrement")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear query")),
		Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Press, k.Increment, k.Decrement, k.Clear, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Press}, {k.Increment, k.Decrement, k.Clear, k.Quit}}
}
