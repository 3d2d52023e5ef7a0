package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search      key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	AllTabs     key.Binding
	Category    key.Binding
	Up          key.Binding
	Down        key.Binding
	Expand      key.Binding
	Copy        key.Binding
	Share       key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Help        key.Binding
	Quit        key.Binding
	ClearSearch key.Binding
	KeepSearch  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
		PrevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev category")),
		AllTabs:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "all categories")),
		Category:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "category")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev card")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next card")),
		Expand:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "read card")),
		Copy:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Share:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		ClearSearch: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		KeepSearch:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keep results")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextTab, k.Down, k.Expand, k.Copy, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.ClearSearch, k.KeepSearch},
		{k.NextTab, k.PrevTab, k.AllTabs, k.Category},
		{k.Up, k.Down, k.Expand, k.Top, k.Bottom},
		{k.Copy, k.Share, k.Help, k.Quit},
	}
}

type searchKeyMap struct{ keys keyMap }

func (s searchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.keys.KeepSearch, s.keys.ClearSearch}
}

func (s searchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{s.ShortHelp()}
}
