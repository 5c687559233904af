package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Grab     key.Binding
	Drop     key.Binding
	Cancel   key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Search   key.Binding
	Filter   key.Binding
	Clear    key.Binding
	Mode     key.Binding
	Board    key.Binding
	List     key.Binding
	Stats    key.Binding
	Reload   key.Binding
	Dismiss  key.Binding
	Preview  key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Advance  key.Binding
	Previous key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		Grab:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab/drop")),
		Drop:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Mode:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Board:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "board")),
		List:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "list")),
		Stats:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "stats")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
		Preview:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Advance:  key.NewBinding(key.WithKeys(">", "s"), key.WithHelp(">", "next status")),
		Previous: key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "prev status")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.New, k.Edit, k.Delete, k.Search, k.Filter, k.Mode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Grab, k.Drop, k.Cancel, k.Advance, k.Previous},
		{k.New, k.Edit, k.Delete, k.Preview},
		{k.Search, k.Filter, k.Clear, k.Reload},
		{k.Mode, k.Board, k.List, k.Stats},
		{k.Dismiss, k.Logout, k.Help, k.Quit},
	}
}
