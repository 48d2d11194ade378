package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Back       key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	NextTab    key.Binding
	Open       key.Binding
	Filter     key.Binding
	Sort       key.Binding
	SortDir    key.Binding
	ToggleView key.Binding
	MoreRows   key.Binding
	FewerRows  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Back:       key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "h", "pgup"), key.WithHelp("←/h", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "l", "pgdown"), key.WithHelp("→/l", "next page")),
		NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by")),
		SortDir:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "reverse")),
		ToggleView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "list/table")),
		MoreRows:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more rows")),
		FewerRows:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "fewer rows")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Filter, k.Sort, k.ToggleView, k.NextTab, k.PrevPage, k.NextPage, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Back},
		{k.PrevPage, k.NextPage, k.MoreRows, k.FewerRows},
		{k.Filter, k.Sort, k.SortDir, k.ToggleView, k.NextTab},
		{k.Quit},
	}
}
