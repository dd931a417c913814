// Package document holds taskpad's persisted document state: the free-text
// task content, the deduplicated collection of attached files, and the
// preview session with its per-file scroll offsets.
package document

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when a position does not address an
// element of the collection.
var ErrIndexOutOfRange = errors.New("index out of range")

// FileRecord is one attached file. Path is its identity.
type FileRecord struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Extension string `json:"extension"`
	Content   string `json:"content"`
}

// Collection is an ordered list of records, unique by Path. Display order is
// insertion order.
type Collection []FileRecord

// AddFiles appends incoming to existing and drops every record whose Path was
// already seen earlier in the combined sequence. Neither argument is
// modified.
func AddFiles(existing Collection, incoming []FileRecord) Collection {
	merged := make(Collection, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, batch := range [][]FileRecord{existing, incoming} {
		for _, f := range batch {
			if _, dup := seen[f.Path]; dup {
				continue
			}
			seen[f.Path] = struct{}{}
			merged = append(merged, f)
		}
	}
	return merged
}

// DeleteAt returns a copy of existing without the element at index, along
// with the removed record.
func DeleteAt(existing Collection, index int) (Collection, FileRecord, error) {
	if index < 0 || index >= len(existing) {
		return existing, FileRecord{}, fmt.Errorf("delete file %d of %d: %w", index, len(existing), ErrIndexOutOfRange)
	}

	removed := existing[index]
	out := make(Collection, 0, len(existing)-1)
	out = append(out, existing[:index]...)
	out = append(out, existing[index+1:]...)
	return out, removed, nil
}

// Change is one record replaced by Refresh.
type Change struct {
	Old FileRecord
	New FileRecord
}

// Refresh returns a copy of existing where every record whose Path matches
// one in incoming, and whose content or size differs, is replaced in place.
// Incoming records for paths not in existing are ignored.
func Refresh(existing Collection, incoming []FileRecord) (Collection, []Change) {
	out := existing.clone()
	var changes []Change
	for _, f := range incoming {
		i := out.IndexOf(f.Path)
		if i < 0 {
			continue
		}
		if out[i].Content == f.Content && out[i].Size == f.Size {
			continue
		}
		changes = append(changes, Change{Old: out[i], New: f})
		out[i] = f
	}
	return out, changes
}

// Clear returns an empty collection.
func Clear() Collection {
	return Collection{}
}

// IndexOf returns the position of the record with path, or -1.
func (c Collection) IndexOf(path string) int {
	for i, f := range c {
		if f.Path == path {
			return i
		}
	}
	return -1
}

// TotalSize sums the sizes of every record.
func (c Collection) TotalSize() int64 {
	var total int64
	for _, f := range c {
		total += f.Size
	}
	return total
}

func (c Collection) clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}
