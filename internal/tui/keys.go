package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Refresh  key.Binding
	Language key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Language: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
}

func (k keyMap) help() string {
	out := ""
	for i, b := range []key.Binding{k.Quit, k.Refresh, k.Language} {
		if i > 0 {
			out += " · "
		}
		out += b.Help().Key + " " + b.Help().Desc
	}
	return out + " · ↑/↓ scroll"
}
