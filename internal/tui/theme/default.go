package theme

import "github.com/charmbracelet/lipgloss"

// NewDefaultTheme creates the default rounded-border theme
func NewDefaultTheme() *Theme {
	return New("default", Palette{
		Primary:             lipgloss.AdaptiveColor{Dark: "#00D9FF", Light: "#1862AB"},
		Secondary:           lipgloss.AdaptiveColor{Dark: "#FF79C6", Light: "#A626A4"},
		Background:          lipgloss.AdaptiveColor{Dark: "#282A36", Light: "#FFFFFF"},
		BackgroundSecondary: lipgloss.AdaptiveColor{Dark: "#44475A", Light: "#F5F5F5"},
		Text:                lipgloss.AdaptiveColor{Dark: "#F8F8F2", Light: "#0E121B"},
		TextMuted:           lipgloss.AdaptiveColor{Dark: "#6272A4", Light: "#6C757D"},
		Error:               lipgloss.AdaptiveColor{Dark: "#FF5555", Light: "#C92A2A"},
		Success:             lipgloss.AdaptiveColor{Dark: "#50FA7B", Light: "#2B8A3E"},
		Warning:             lipgloss.AdaptiveColor{Dark: "#FFB86C", Light: "#E67700"},
		Info:                lipgloss.AdaptiveColor{Dark: "#8BE9FD", Light: "#1098AD"},
		Border:              lipgloss.AdaptiveColor{Dark: "#6272A4", Light: "#DEE2E6"},
	}, lipgloss.RoundedBorder())
}

// NewASCIITheme uses the default palette with plain ASCII borders for
// terminals without box-drawing glyphs.
func NewASCIITheme() *Theme {
	t := NewDefaultTheme()
	t.name = "ascii"
	t.border = lipgloss.ASCIIBorder()
	return t
}

// NewOneDarkTheme creates a theme from the One Dark palette
func NewOneDarkTheme() *Theme {
	return New("onedark", Palette{
		Primary:             lipgloss.AdaptiveColor{Dark: "#61afef", Light: "#0184BC"},
		Secondary:           lipgloss.AdaptiveColor{Dark: "#c678dd", Light: "#A626A4"},
		Background:          lipgloss.AdaptiveColor{Dark: "#121212", Light: "#FAFAFA"},
		BackgroundSecondary: lipgloss.AdaptiveColor{Dark: "#181a1f", Light: "#F3F3F3"},
		Text:                lipgloss.AdaptiveColor{Dark: "#bbbbbb", Light: "#383A42"},
		TextMuted:           lipgloss.AdaptiveColor{Dark: "#5c6370", Light: "#A0A1A7"},
		Error:               lipgloss.AdaptiveColor{Dark: "#e06c75", Light: "#E45649"},
		Success:             lipgloss.AdaptiveColor{Dark: "#98c379", Light: "#50A14F"},
		Warning:             lipgloss.AdaptiveColor{Dark: "#e5c07b", Light: "#C18401"},
		Info:                lipgloss.AdaptiveColor{Dark: "#56b6c2", Light: "#0997B3"},
		Border:              lipgloss.AdaptiveColor{Dark: "#5c6370", Light: "#D3D3D4"},
	}, lipgloss.NormalBorder())
}

func init() {
	Register("default", NewDefaultTheme)
	Register("ascii", NewASCIITheme)
	Register("onedark", NewOneDarkTheme)
}
