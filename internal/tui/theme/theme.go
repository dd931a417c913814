// Package theme holds the colour palettes and derived styles of the TUI.
package theme

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the set of colours a theme is built from
type Palette struct {
	Primary             lipgloss.AdaptiveColor
	Secondary           lipgloss.AdaptiveColor
	Background          lipgloss.AdaptiveColor
	BackgroundSecondary lipgloss.AdaptiveColor
	Text                lipgloss.AdaptiveColor
	TextMuted           lipgloss.AdaptiveColor
	Error               lipgloss.AdaptiveColor
	Success             lipgloss.AdaptiveColor
	Warning             lipgloss.AdaptiveColor
	Info                lipgloss.AdaptiveColor
	Border              lipgloss.AdaptiveColor
}

// Blend mixes b into a by t (0 keeps a, 1 gives b) in Lab space, separately
// for the light and dark variants. A variant that is not a hex colour is
// left as a.
func Blend(a, b lipgloss.AdaptiveColor, t float64) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Light: blendHex(a.Light, b.Light, t),
		Dark:  blendHex(a.Dark, b.Dark, t),
	}
}

func blendHex(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}

// Theme turns a palette into the styles the components use
type Theme struct {
	name    string
	palette Palette
	border  lipgloss.Border
}

// New creates a theme from a palette and border set
func New(name string, p Palette, border lipgloss.Border) *Theme {
	return &Theme{name: name, palette: p, border: border}
}

// Name returns the registry name of the theme
func (t *Theme) Name() string { return t.name }

// Palette returns the colours the theme was built from
func (t *Theme) Palette() Palette { return t.palette }

// Base is plain text on the theme background
func (t *Theme) Base() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Text)
}

func (t *Theme) PrimaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Primary)
}

func (t *Theme) SecondaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Secondary)
}

func (t *Theme) MutedText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.TextMuted)
}

func (t *Theme) ErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Error)
}

func (t *Theme) SuccessText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.palette.Success)
}

// Pane frames an unfocused pane
func (t *Theme) Pane() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.border).
		BorderForeground(t.palette.Border)
}

// PaneFocused frames the pane that receives keys
func (t *Theme) PaneFocused() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.border).
		BorderForeground(t.palette.Primary)
}

func (t *Theme) PaneTitle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette.Secondary).
		Bold(true)
}

func (t *Theme) DialogStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.border).
		BorderForeground(t.palette.Primary).
		Padding(0, 1)
}

func (t *Theme) DialogTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette.Primary).
		Bold(true)
}

func (t *Theme) ListItem() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette.Text).
		PaddingLeft(1)
}

func (t *Theme) ListItemActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette.Primary).
		Background(Blend(t.palette.Background, t.palette.Primary, 0.15)).
		Bold(true).
		PaddingLeft(1)
}

func (t *Theme) ListItemSelected() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette.Success).
		PaddingLeft(1)
}

func (t *Theme) StatusBar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.palette.BackgroundSecondary).
		Foreground(t.palette.Text).
		Padding(0, 1)
}

func (t *Theme) StatusKey() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.palette.BackgroundSecondary).
		Foreground(t.palette.TextMuted)
}

func (t *Theme) StatusValue() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.palette.BackgroundSecondary).
		Foreground(t.palette.Primary)
}

// Toast frames a notification in the given accent colour
func (t *Theme) Toast(accent lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.palette.Text).
		Border(t.border).
		BorderForeground(accent).
		Padding(0, 1)
}

var (
	mu       sync.RWMutex
	registry = map[string]func() *Theme{}
)

// Register adds a theme constructor under name
func Register(name string, ctor func() *Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = ctor
}

// Get returns the named theme, or the default theme when the name is unknown.
func Get(name string) *Theme {
	mu.RLock()
	ctor, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return NewDefaultTheme()
	}
	return ctor()
}

// Names lists the registered themes in alphabetical order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
