// Package files is the attached-files pane.
package files

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/entrepeneur4lyf/taskpad/internal/format"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
)

// OpenPreviewMsg asks for the file at Index to be previewed
type OpenPreviewMsg struct{ Index int }

// DeleteFileMsg asks for the file at Index to be removed
type DeleteFileMsg struct{ Index int }

// ClearFilesMsg asks for every file to be removed
type ClearFilesMsg struct{}

// OpenPickerMsg asks for the file picker
type OpenPickerMsg struct{}

// Model lists the attached files in display order
type Model struct {
	theme   *theme.Theme
	files   document.Collection
	cursor  int
	offset  int
	width   int
	height  int
	focused bool
}

// New creates an empty list
func New(th *theme.Theme) *Model {
	return &Model{theme: th}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// SetFiles replaces the listed files, keeping the cursor in range.
func (m *Model) SetFiles(files document.Collection) {
	m.files = files
	if m.cursor >= len(files) {
		m.cursor = max(len(files)-1, 0)
	}
	m.scroll()
}

// Cursor returns the index under the cursor
func (m *Model) Cursor() int {
	return m.cursor
}

// SetSize sets the pane size including its frame
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scroll()
}

// Focus gives the list the keyboard
func (m *Model) Focus() {
	m.focused = true
}

// Blur releases the keyboard
func (m *Model) Blur() {
	m.focused = false
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, Keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, Keys.Down):
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, Keys.Top):
		m.cursor = 0
	case key.Matches(keyMsg, Keys.Bottom):
		m.cursor = max(len(m.files)-1, 0)
	case key.Matches(keyMsg, Keys.Open):
		return m, m.indexCmd(func(i int) tea.Msg { return OpenPreviewMsg{Index: i} })
	case key.Matches(keyMsg, Keys.Delete):
		return m, m.indexCmd(func(i int) tea.Msg { return DeleteFileMsg{Index: i} })
	case key.Matches(keyMsg, Keys.Clear):
		if len(m.files) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return ClearFilesMsg{} }
	case key.Matches(keyMsg, Keys.Add):
		return m, func() tea.Msg { return OpenPickerMsg{} }
	}
	m.scroll()
	return m, nil
}

// indexCmd emits a message for the cursor row, if there is one.
func (m *Model) indexCmd(build func(int) tea.Msg) tea.Cmd {
	if len(m.files) == 0 {
		return nil
	}
	i := m.cursor
	return func() tea.Msg { return build(i) }
}

// rows is the number of file lines that fit inside the frame and title.
func (m *Model) rows() int {
	return max(m.height-3, 1)
}

func (m *Model) scroll() {
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(min(m.offset, len(m.files)-rows), 0)
}

// Row renders one record as "path · size · ext".
func Row(f document.FileRecord) string {
	parts := []string{f.Path, format.Size(f.Size)}
	if f.Extension != "" {
		parts = append(parts, f.Extension)
	}
	return strings.Join(parts, " · ")
}

func (m *Model) View() string {
	inner := max(m.width-2, 0)

	title := fmt.Sprintf("Files (%d, %s)", len(m.files), format.Size(m.files.TotalSize()))
	lines := []string{m.theme.PaneTitle().Render(ansi.Truncate(title, inner, "…"))}

	if len(m.files) == 0 {
		lines = append(lines, m.theme.MutedText().Render(ansi.Truncate("No files attached. Press a to add.", inner, "…")))
	}

	end := min(m.offset+m.rows(), len(m.files))
	for i := m.offset; i < end; i++ {
		style := m.theme.ListItem()
		marker := "  "
		if i == m.cursor && m.focused {
			style = m.theme.ListItemActive()
			marker = "> "
		}
		lines = append(lines, style.Render(ansi.Truncate(marker+Row(m.files[i]), max(inner-1, 0), "…")))
	}

	style := m.theme.Pane()
	if m.focused {
		style = m.theme.PaneFocused()
	}
	return style.
		Width(inner).
		Height(max(m.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}

// KeyMap is the file list's key bindings
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Open   key.Binding
	Delete key.Binding
	Clear  key.Binding
	Add    key.Binding
}

// Keys are the file list's bindings, exported for the help view
var Keys = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "first file"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "last file"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preview"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "remove file"),
	),
	Clear: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "remove all"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add files"),
	),
}
