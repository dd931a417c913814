package dialogs

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
)

// HelpDialog displays keyboard shortcuts
type HelpDialog struct {
	theme  *theme.Theme
	keys   help.KeyMap
	help   help.Model
	width  int
	height int
}

// NewHelpDialog creates a help dialog listing keys
func NewHelpDialog(th *theme.Theme, keys help.KeyMap) *HelpDialog {
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = th.PrimaryText()
	h.Styles.FullDesc = th.Base()
	h.Styles.FullSeparator = th.MutedText()
	return &HelpDialog{theme: th, keys: keys, help: h}
}

func (h *HelpDialog) Init() tea.Cmd {
	return nil
}

// SetSize sets the screen size the dialog centres itself in
func (h *HelpDialog) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.help.Width = max(width-8, 0)
}

func (h *HelpDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		// Any key closes the help dialog
		return h, func() tea.Msg { return DialogCloseMsg{} }
	}

	return h, nil
}

func (h *HelpDialog) View() string {
	if h.width == 0 || h.height == 0 {
		return ""
	}

	var content strings.Builder
	content.WriteString(h.theme.DialogTitleStyle().Render("taskpad keys"))
	content.WriteString("\n\n")
	content.WriteString(h.help.View(h.keys))
	content.WriteString("\n\n")
	content.WriteString(h.theme.MutedText().Render("Press any key to close"))

	return h.theme.DialogStyle().
		MaxWidth(h.width).
		MaxHeight(h.height).
		Align(lipgloss.Left).
		Render(content.String())
}
