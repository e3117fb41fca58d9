package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	NextRoute   key.Binding
	PrevRoute   key.Binding
	RouteAll    key.Binding
	RouteActive key.Binding
	RouteDone   key.Binding
	Add         key.Binding
	Search      key.Binding
	Sort        key.Binding
	Toggle      key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Clear       key.Binding
	Theme       key.Binding
	Retry       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextRoute:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevRoute:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
		RouteAll:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
		RouteActive: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
		RouteDone:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Search:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space/x", "toggle")),
		Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Clear:       key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		Theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Retry:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Search, k.Sort, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextRoute, k.PrevRoute},
		{k.RouteAll, k.RouteActive, k.RouteDone, k.Sort},
		{k.Add, k.Edit, k.Toggle, k.Delete, k.Clear},
		{k.Search, k.Theme, k.Help, k.Quit},
	}
}

// formKeys are active while a text input has focus.
type formKeys struct {
	Submit  key.Binding
	Cancel  key.Binding
	Next    key.Binding
	Clear   key.Binding
	Newline key.Binding
}

func defaultFormKeys() formKeys {
	return formKeys{
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Next:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch field")),
		Clear:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear")),
		Newline: key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "newline")),
	}
}

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel, k.Next, k.Clear, k.Newline}
}

func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
