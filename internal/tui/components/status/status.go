// Package status is the one-line bar at the bottom of the screen.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/entrepeneur4lyf/taskpad/internal/events"
	"github.com/entrepeneur4lyf/taskpad/internal/format"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
)

// NoticeMsg carries a document event to the status bar
type NoticeMsg events.Event[document.Notice]

// Model represents the status bar component
type Model struct {
	theme     *theme.Theme
	width     int
	fileCount int
	totalSize int64
	saved     bool
	lastErr   string
	errKey    string
	help      string
}

// New creates a status bar
func New(th *theme.Theme) *Model {
	return &Model{theme: th}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// SetWidth sets the width of the status bar
func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetFiles updates the file summary
func (m *Model) SetFiles(files document.Collection) {
	m.fileCount = len(files)
	m.totalSize = files.TotalSize()
}

// SetHelp sets the key hint shown on the right
func (m *Model) SetHelp(help string) {
	m.help = help
}

// LastError returns the message of the last persistence failure that has
// not been superseded by a successful write of the same key.
func (m *Model) LastError() string {
	return m.lastErr
}

func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case NoticeMsg:
		switch msg.Type {
		case events.StorePersistFailed:
			m.errKey = msg.Payload.Key
			m.lastErr = fmt.Sprintf("save failed (%s): %v", msg.Payload.Key, msg.Payload.Err)
		case events.StorePersisted:
			m.saved = true
			if msg.Payload.Key == m.errKey {
				m.lastErr, m.errKey = "", ""
			}
		case events.ContentChanged, events.FilesChanged:
			m.saved = false
		}
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width <= 0 {
		return ""
	}

	left := []string{
		m.theme.StatusValue().Bold(true).Render("taskpad"),
		m.theme.StatusKey().Render(fmt.Sprintf("%d files · %s", m.fileCount, format.Size(m.totalSize))),
	}
	switch {
	case m.lastErr != "":
		left = append(left, m.theme.ErrorText().Render(m.lastErr))
	case m.saved:
		left = append(left, m.theme.SuccessText().Render("saved"))
	}

	leftView := strings.Join(left, m.theme.StatusKey().Render("  "))
	right := m.theme.StatusKey().Render(m.help)

	inner := max(m.width-2, 0)
	gap := inner - ansi.StringWidth(leftView) - ansi.StringWidth(right)
	line := leftView
	if gap >= 1 {
		line += strings.Repeat(" ", gap) + right
	}
	line = ansi.Truncate(line, inner, "…")

	return m.theme.StatusBar().
		Width(m.width).
		MaxHeight(1).
		Render(line)
}
