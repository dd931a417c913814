// Package format holds small display helpers shared by the CLI and the TUI.
package format

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// Size renders a byte count in powers of 1024 with two decimals. Scaling
// stops at GB, so a terabyte renders as "1024.00 GB".
func Size(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}

	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}

	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}
