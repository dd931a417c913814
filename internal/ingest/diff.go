package ingest

import (
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

// Diff returns a unified diff between two versions of the file at path, or
// "" when they are equal.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}
	return udiff.Unified("a/"+path, "b/"+path, before, after)
}

// DiffStat counts the lines added and removed between two versions.
func DiffStat(before, after string) (added, removed int) {
	inHunk := false
	for _, line := range strings.Split(Diff("", before, after), "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
		case !inHunk:
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}
