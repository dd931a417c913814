// Package layout composes rendered views.
package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Position represents where to place an overlay
type Position int

const (
	Center Position = iota
	Top
	Bottom
	TopRight
	BottomRight
)

// PlaceOverlay places overlay over a width x height background. Both may
// contain ANSI styling; cells are measured with their printable width.
func PlaceOverlay(width, height int, overlay, background string, pos Position) string {
	overlayLines := strings.Split(overlay, "\n")
	backgroundLines := strings.Split(background, "\n")

	for len(backgroundLines) < height {
		backgroundLines = append(backgroundLines, "")
	}

	overlayHeight := len(overlayLines)
	overlayWidth := 0
	for _, line := range overlayLines {
		if w := ansi.StringWidth(line); w > overlayWidth {
			overlayWidth = w
		}
	}

	var startX, startY int
	switch pos {
	case Center:
		startX = (width - overlayWidth) / 2
		startY = (height - overlayHeight) / 2
	case Top:
		startX = (width - overlayWidth) / 2
	case Bottom:
		startX = (width - overlayWidth) / 2
		startY = height - overlayHeight
	case TopRight:
		startX = width - overlayWidth
	case BottomRight:
		startX = width - overlayWidth
		startY = height - overlayHeight
	}
	startX = max(startX, 0)
	startY = max(startY, 0)

	result := make([]string, height)
	copy(result, backgroundLines[:height])

	for i, line := range overlayLines {
		y := startY + i
		if y >= height {
			break
		}
		result[y] = splice(result[y], line, startX, overlayWidth)
	}

	return strings.Join(result, "\n")
}

// splice replaces width cells of bg starting at x with line.
func splice(bg, line string, x, width int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	right := ansi.TruncateLeft(bg, x+width, "")
	return left + line + right
}

