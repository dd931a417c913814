// Package ingest turns local paths and glob patterns into file records ready
// to be attached to the document.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxFileSize is the largest file attached when no limit is configured.
const DefaultMaxFileSize int64 = 1 << 20

// binarySniffLen is how much of a file is checked for NUL bytes.
const binarySniffLen = 8 << 10

// Skip records an input that produced no file record.
type Skip struct {
	Path   string
	Reason string
}

// Result is the outcome of one Load call.
type Result struct {
	Files   []document.FileRecord
	Skipped []Skip
}

// Options configures a Loader
type Options struct {
	MaxFileSize      int64
	RespectGitignore bool
}

// Loader reads files relative to a root directory
type Loader struct {
	root    string
	maxSize int64
	filter  *GitIgnoreFilter
}

// NewLoader creates a loader resolving relative inputs against root
func NewLoader(root string, opts Options) *Loader {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	l := &Loader{root: root, maxSize: opts.MaxFileSize}
	if l.maxSize <= 0 {
		l.maxSize = DefaultMaxFileSize
	}
	if opts.RespectGitignore {
		l.filter = NewGitIgnoreFilter(root)
	}
	return l
}

// Load resolves every input (file, directory or doublestar pattern) into
// records, in input order. Unreadable, oversized and binary files are
// reported in Skipped. Only a malformed pattern or a cancelled context is
// an error.
func (l *Loader) Load(ctx context.Context, inputs []string) (Result, error) {
	var res Result
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if isPattern(input) {
			if err := l.loadPattern(ctx, input, &res); err != nil {
				return res, err
			}
			continue
		}

		abs := l.abs(input)
		info, err := os.Stat(abs)
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Path: input, Reason: "not found"})
			continue
		}
		if info.IsDir() {
			if err := l.loadDir(ctx, abs, &res); err != nil {
				return res, err
			}
			continue
		}
		l.loadFile(abs, &res)
	}

	log.Debug("ingested files", "inputs", len(inputs), "files", len(res.Files), "skipped", len(res.Skipped))
	return res, nil
}

// Reload reads the files at the given record paths again. Paths are taken
// literally, never as patterns, and directories are not walked.
func (l *Loader) Reload(ctx context.Context, paths []string) (Result, error) {
	var res Result
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		l.loadFile(l.abs(filepath.FromSlash(p)), &res)
	}
	return res, nil
}

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func (l *Loader) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(l.root, p)
}

func (l *Loader) loadPattern(ctx context.Context, pattern string, res *Result) error {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	base := l.root
	if filepath.IsAbs(pattern) {
		var rest string
		base, rest = doublestar.SplitPattern(slashed)
		base = filepath.FromSlash(base)
		slashed = rest
	}

	matches, err := doublestar.Glob(os.DirFS(base), slashed, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("failed to expand pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		res.Skipped = append(res.Skipped, Skip{Path: pattern, Reason: "no matches"})
		return nil
	}

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		abs := filepath.Join(base, filepath.FromSlash(m))
		if l.filter.IsIgnored(abs) {
			continue
		}
		l.loadFile(abs, res)
	}
	return nil
}

func (l *Loader) loadDir(ctx context.Context, dir string, res *Result) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{Path: l.display(path), Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != dir {
			if d.IsDir() && l.filter.IsIgnoredDir(path) {
				return filepath.SkipDir
			}
			if !d.IsDir() && l.filter.IsIgnored(path) {
				return nil
			}
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		l.loadFile(path, res)
		return nil
	})
}

func (l *Loader) loadFile(abs string, res *Result) {
	display := l.display(abs)

	info, err := os.Stat(abs)
	if err != nil {
		res.Skipped = append(res.Skipped, Skip{Path: display, Reason: "not found"})
		return
	}
	if info.Size() > l.maxSize {
		res.Skipped = append(res.Skipped, Skip{Path: display, Reason: fmt.Sprintf("larger than %d bytes", l.maxSize)})
		return
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		reason := "unreadable"
		if errors.Is(err, fs.ErrPermission) {
			reason = "permission denied"
		}
		res.Skipped = append(res.Skipped, Skip{Path: display, Reason: reason})
		return
	}
	if isBinary(data) {
		res.Skipped = append(res.Skipped, Skip{Path: display, Reason: "binary"})
		return
	}

	res.Files = append(res.Files, document.FileRecord{
		Name:      filepath.Base(abs),
		Path:      display,
		Size:      int64(len(data)),
		Extension: strings.ToLower(strings.TrimPrefix(filepath.Ext(abs), ".")),
		Content:   string(data),
	})
}

// display is the slash path relative to the root, or the absolute path for
// files outside it. It is NFC normalised so that one file reached through
// differently composed names dedups to one record.
func (l *Loader) display(abs string) string {
	rel, err := filepath.Rel(l.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = abs
	}
	return norm.NFC.String(filepath.ToSlash(rel))
}

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
