package document

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
)

// Persisted keys.
const (
	ContentKey = "markdownContent"
	FilesKey   = "uploadedFiles"

	scrollKeyPrefix = "scrollPosition:"
)

// ScrollKey is the store key holding the scroll offset for the file at path.
func ScrollKey(path string) string {
	return scrollKeyPrefix + path
}

// HydrateContent reads the persisted document content, "" when absent or
// unreadable.
func HydrateContent(ctx context.Context, store kvstore.Store) string {
	v, ok, err := store.Get(ctx, ContentKey)
	if err != nil {
		log.Warn("failed to read document content, starting empty", "err", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// HydrateFiles reads the persisted file collection. Absent, unreadable or
// malformed data yields an empty collection.
func HydrateFiles(ctx context.Context, store kvstore.Store) Collection {
	v, ok, err := store.Get(ctx, FilesKey)
	if err != nil {
		log.Warn("failed to read file collection, starting empty", "err", err)
		return Clear()
	}
	if !ok || strings.TrimSpace(v) == "" {
		return Clear()
	}

	var files []FileRecord
	if err := json.Unmarshal([]byte(v), &files); err != nil {
		log.Warn("discarding malformed file collection", "key", FilesKey, "err", err)
		return Clear()
	}

	// Re-apply dedup in case the stored value was edited by hand.
	return AddFiles(nil, files)
}

// RestoreOffset reads the persisted scroll offset for file, 0 when absent or
// unparsable.
func RestoreOffset(ctx context.Context, store kvstore.Store, file FileRecord) int {
	v, ok, err := store.Get(ctx, ScrollKey(file.Path))
	if err != nil {
		log.Warn("failed to read scroll position", "path", file.Path, "err", err)
		return 0
	}
	if !ok {
		return 0
	}

	offset, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

func encodeFiles(files Collection) (string, error) {
	if files == nil {
		files = Clear()
	}
	b, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
