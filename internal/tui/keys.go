package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle   key.Binding
	Remove   key.Binding
	Search   key.Binding
	Clear    key.Binding
	Reload   key.Binding
	NextView key.Binding
	PrevView key.Binding
	NextFlag key.Binding
	PrevFlag key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		NextView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next list")),
		PrevView: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev list")),
		NextFlag: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next field")),
		PrevFlag: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev field")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Toggle, k.NextFlag, k.Remove, k.Search, k.Reload, k.NextView}
}

func (k keyMap) full() []key.Binding {
	return []key.Binding{k.Toggle, k.NextFlag, k.PrevFlag, k.Remove, k.Search, k.Clear, k.Reload, k.NextView, k.PrevView}
}
