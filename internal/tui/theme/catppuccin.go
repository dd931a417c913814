package theme

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// adaptive pairs a Latte colour for light terminals with a Mocha colour for
// dark ones.
func adaptive(pick func(catppuccin.Flavor) catppuccin.Color) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Light: pick(catppuccin.Latte).Hex,
		Dark:  pick(catppuccin.Mocha).Hex,
	}
}

// NewCatppuccinTheme creates a theme from the Catppuccin Latte and Mocha
// flavours
func NewCatppuccinTheme() *Theme {
	base := adaptive(catppuccin.Flavor.Base)
	surface := adaptive(catppuccin.Flavor.Surface0)

	return New("catppuccin", Palette{
		Primary:             adaptive(catppuccin.Flavor.Mauve),
		Secondary:           adaptive(catppuccin.Flavor.Pink),
		Background:          base,
		BackgroundSecondary: Blend(base, surface, 0.6),
		Text:                adaptive(catppuccin.Flavor.Text),
		TextMuted:           adaptive(catppuccin.Flavor.Overlay1),
		Error:               adaptive(catppuccin.Flavor.Red),
		Success:             adaptive(catppuccin.Flavor.Green),
		Warning:             adaptive(catppuccin.Flavor.Peach),
		Info:                adaptive(catppuccin.Flavor.Sky),
		Border:              adaptive(catppuccin.Flavor.Surface2),
	}, lipgloss.RoundedBorder())
}

func init() {
	Register("catppuccin", NewCatppuccinTheme)
}
