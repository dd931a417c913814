// Package dialogs contains the modal views drawn over the main screen.
package dialogs

import (
	"github.com/charmbracelet/x/ansi"
)

// DialogCloseMsg is sent when a dialog should close
type DialogCloseMsg struct{}

// truncate cuts s to maxWidth cells, marking the cut with an ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return ansi.Truncate(s, maxWidth, "…")
}

// truncatePath keeps the end of a path, which is the part that tells
// entries apart.
func truncatePath(path string, maxWidth int) string {
	w := ansi.StringWidth(path)
	if w <= maxWidth {
		return path
	}
	if maxWidth <= 1 {
		return truncate(path, maxWidth)
	}
	return "…" + ansi.TruncateLeft(path, w-maxWidth+1, "")
}
