package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/files"
)

// Key bindings
type keyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Focus  key.Binding
	Add    key.Binding
	Export key.Binding
	Reload key.Binding
	Leave  key.Binding
}

var _ help.KeyMap = keyMap{}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+q"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "help"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	Add: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "add files"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy prompt"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload files"),
	),
	Leave: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave editor"),
	),
}

// ShortHelp is the hint shown in the status bar
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Add, k.Export, k.Help, k.Quit}
}

// FullHelp is the layout of the help dialog
func (k keyMap) FullHelp() [][]key.Binding {
	f := files.Keys
	return [][]key.Binding{
		{k.Focus, k.Add, k.Export, k.Reload, k.Leave, k.Help, k.Quit},
		{f.Up, f.Down, f.Top, f.Bottom},
		{f.Open, f.Add, f.Delete, f.Clear},
	}
}
