package dialogs

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/entrepeneur4lyf/taskpad/internal/format"
	"github.com/entrepeneur4lyf/taskpad/internal/highlight"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
)

// Rows and columns the dialog frame takes around the viewport: border,
// padding, header and footer.
const (
	previewChromeRows = 5
	previewChromeCols = 4
)

// PreviewDialog shows one file in a scrollable viewport. The restored
// offset is applied only once the viewport has a size, since offsets are
// clamped against the visible height.
type PreviewDialog struct {
	theme    *theme.Theme
	renderer *highlight.Renderer
	viewport viewport.Model
	file     document.FileRecord
	open     bool
	width    int
	height   int
	sized    bool
	pending  int
}

// NewPreviewDialog creates a closed preview
func NewPreviewDialog(th *theme.Theme, renderer *highlight.Renderer) *PreviewDialog {
	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true
	return &PreviewDialog{
		theme:    th,
		renderer: renderer,
		viewport: vp,
		pending:  -1,
	}
}

func (p *PreviewDialog) Init() tea.Cmd {
	return nil
}

// Open shows file and scrolls to offset
func (p *PreviewDialog) Open(file document.FileRecord, offset int) {
	p.file = file
	p.open = true
	p.viewport.SetYOffset(0)
	p.viewport.SetContent(p.renderer.Render(file.Path, file.Content, file.Extension))
	p.pending = offset
	if p.sized {
		p.applyPending()
	}
}

// Replace swaps in newer content for the file being shown. The scroll
// position is kept as far as the new content allows.
func (p *PreviewDialog) Replace(file document.FileRecord) {
	if !p.open || p.file.Path != file.Path {
		return
	}
	offset := p.viewport.YOffset
	p.file = file
	p.viewport.SetContent(p.renderer.Render(file.Path, file.Content, file.Extension))
	p.viewport.SetYOffset(offset)
}

// Close hides the preview
func (p *PreviewDialog) Close() {
	p.open = false
	p.pending = -1
	p.file = document.FileRecord{}
	p.viewport.SetContent("")
}

// IsOpen reports whether a file is shown
func (p *PreviewDialog) IsOpen() bool {
	return p.open
}

// File returns the file being shown
func (p *PreviewDialog) File() document.FileRecord {
	return p.file
}

// Offset is the first visible line
func (p *PreviewDialog) Offset() int {
	return p.viewport.YOffset
}

// SetSize sizes the viewport for a width x height screen
func (p *PreviewDialog) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = max(width-previewChromeCols, 1)
	p.viewport.Height = max(height-previewChromeRows, 1)
	p.sized = width > 0 && height > 0
	if p.sized {
		p.applyPending()
	}
}

func (p *PreviewDialog) applyPending() {
	if p.pending < 0 {
		return
	}
	p.viewport.SetYOffset(p.pending)
	p.pending = -1
}

func (p *PreviewDialog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.SetSize(msg.Width, msg.Height)
		return p, nil

	case tea.KeyMsg:
		if key.Matches(msg, previewKeys.Close) {
			return p, func() tea.Msg { return DialogCloseMsg{} }
		}
	}

	if !p.open {
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *PreviewDialog) View() string {
	if !p.open || !p.sized {
		return ""
	}

	inner := p.viewport.Width
	title := fmt.Sprintf("%s  %s", p.file.Path, format.Size(p.file.Size))
	header := p.theme.DialogTitleStyle().Render(truncate(title, inner))

	footer := fmt.Sprintf("%d/%d  %3.f%%  ↑/↓ pgup/pgdn scroll • esc close",
		p.viewport.YOffset+1, max(p.viewport.TotalLineCount(), 1), p.viewport.ScrollPercent()*100)
	footer = p.theme.MutedText().Render(truncate(footer, inner))

	body := lipgloss.JoinVertical(lipgloss.Left, header, "", p.viewport.View(), footer)
	return p.theme.DialogStyle().
		Width(p.width - 2).
		MaxHeight(p.height).
		Render(strings.TrimRight(body, "\n"))
}

type previewKeyMap struct {
	Close key.Binding
}

var previewKeys = previewKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc/q", "close preview"),
	),
}
