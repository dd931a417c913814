// Package editor is the free-text task pane.
package editor

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
)

// Model wraps a textarea holding the document content
type Model struct {
	textarea textarea.Model
	theme    *theme.Theme
	width    int
	height   int
}

// New creates an editor showing content
func New(th *theme.Theme, content string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the task..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetValue(content)

	ta.FocusedStyle.Base = th.Base()
	ta.FocusedStyle.Placeholder = th.MutedText()
	ta.FocusedStyle.CursorLine = th.Base()
	ta.BlurredStyle.Base = th.MutedText()
	ta.BlurredStyle.Placeholder = th.MutedText()

	return &Model{textarea: ta, theme: th}
}

func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update forwards msg to the textarea and reports whether the text changed.
func (m *Model) Update(msg tea.Msg) (bool, tea.Cmd) {
	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m.textarea.Value() != before, cmd
}

// Value returns the current text
func (m *Model) Value() string {
	return m.textarea.Value()
}

// SetSize sets the pane size including its frame
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.textarea.SetWidth(max(width-2, 1))
	m.textarea.SetHeight(max(height-3, 1))
}

// Focus gives the editor the keyboard
func (m *Model) Focus() tea.Cmd {
	return m.textarea.Focus()
}

// Blur releases the keyboard
func (m *Model) Blur() {
	m.textarea.Blur()
}

// Focused reports whether the editor has the keyboard
func (m *Model) Focused() bool {
	return m.textarea.Focused()
}

func (m *Model) View() string {
	style := m.theme.Pane()
	if m.Focused() {
		style = m.theme.PaneFocused()
	}
	title := m.theme.PaneTitle().Render("Task")
	return style.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(title + "\n" + m.textarea.View())
}
