// Package toast shows short-lived notifications over the main view.
package toast

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/layout"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
	"github.com/google/uuid"
)

// DefaultDuration is how long a toast stays up
const DefaultDuration = 3 * time.Second

// Kind selects a toast's accent colour
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

// ShowToastMsg is a message to display a toast notification
type ShowToastMsg struct {
	Message  string
	Kind     Kind
	Duration time.Duration
}

// DismissToastMsg is a message to dismiss a specific toast
type DismissToastMsg struct {
	ID string
}

// Toast represents a single toast notification
type Toast struct {
	ID      string
	Message string
	Kind    Kind
}

// Manager manages the visible toasts, newest last
type Manager struct {
	toasts []Toast
	theme  *theme.Theme
}

// NewManager creates a toast manager
func NewManager(th *theme.Theme) *Manager {
	return &Manager{theme: th}
}

// Toasts returns the visible toasts
func (tm *Manager) Toasts() []Toast {
	return tm.toasts
}

// Update handles messages for the toast manager
func (tm *Manager) Update(msg tea.Msg) (*Manager, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowToastMsg:
		t := Toast{ID: uuid.NewString(), Message: msg.Message, Kind: msg.Kind}
		tm.toasts = append(tm.toasts, t)

		d := msg.Duration
		if d <= 0 {
			d = DefaultDuration
		}
		return tm, tea.Tick(d, func(time.Time) tea.Msg {
			return DismissToastMsg{ID: t.ID}
		})

	case DismissToastMsg:
		kept := tm.toasts[:0]
		for _, t := range tm.toasts {
			if t.ID != msg.ID {
				kept = append(kept, t)
			}
		}
		tm.toasts = kept
	}
	return tm, nil
}

func (tm *Manager) accent(k Kind) lipgloss.AdaptiveColor {
	p := tm.theme.Palette()
	switch k {
	case Success:
		return p.Success
	case Error:
		return p.Error
	default:
		return p.Info
	}
}

// View renders all active toasts stacked
func (tm *Manager) View(width int) string {
	if len(tm.toasts) == 0 {
		return ""
	}
	maxWidth := max(min(width/2, 60), 20)

	views := make([]string, 0, len(tm.toasts))
	for _, t := range tm.toasts {
		views = append(views, tm.theme.Toast(tm.accent(t.Kind)).
			Width(maxWidth-2).
			Render(t.Message))
	}
	return strings.Join(views, "\n")
}

// RenderOverlay draws the toasts in the top-right corner of background
func (tm *Manager) RenderOverlay(width, height int, background string) string {
	view := tm.View(width)
	if view == "" {
		return background
	}
	return layout.PlaceOverlay(width, height, view, background, layout.TopRight)
}

// New returns a command showing message
func New(message string, kind Kind) tea.Cmd {
	return func() tea.Msg {
		return ShowToastMsg{Message: message, Kind: kind}
	}
}
