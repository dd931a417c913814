package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func recordPaths(files []document.FileRecord) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestLoadSingleFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pkg/Util.GO": "package pkg\n"})

	res, err := NewLoader(root, Options{}).Load(context.Background(), []string{"pkg/Util.GO"})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)

	f := res.Files[0]
	assert.Equal(t, "Util.GO", f.Name)
	assert.Equal(t, "pkg/Util.GO", f.Path)
	assert.Equal(t, "go", f.Extension)
	assert.Equal(t, int64(12), f.Size)
	assert.Equal(t, "package pkg\n", f.Content)
	assert.Empty(t, res.Skipped)
}

func TestLoadDirectoryRespectsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "secret.txt\ngen/\n",
		"a.go":              "package a",
		"b/c.md":            "# c",
		"secret.txt":        "hunter2",
		"gen/out.go":        "package gen",
		".git/HEAD":         "ref: refs/heads/main",
		"b/nested/deep.txt": "deep",
	})

	res, err := NewLoader(root, Options{RespectGitignore: true}).Load(context.Background(), []string{"."})
	require.NoError(t, err)
	assert.Equal(t, []string{".gitignore", "a.go", "b/c.md", "b/nested/deep.txt"}, recordPaths(res.Files))

	res, err = NewLoader(root, Options{}).Load(context.Background(), []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b/c.md", "b/nested/deep.txt"}, recordPaths(res.Files))
}

func TestLoadPattern(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"cmd/main.go":          "package main",
		"internal/x/x.go":      "package x",
		"internal/x/x_test.go": "package x",
		"README.md":            "# readme",
	})

	l := NewLoader(root, Options{})

	res, err := l.Load(context.Background(), []string{"**/*.go"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cmd/main.go", "internal/x/x.go", "internal/x/x_test.go"}, recordPaths(res.Files))

	res, err = l.Load(context.Background(), []string{filepath.ToSlash(root) + "/*.md"})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "README.md", res.Files[0].Path)

	res, err = l.Load(context.Background(), []string{"**/*.rs"})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "no matches", res.Skipped[0].Reason)

	_, err = l.Load(context.Background(), []string{"[unterminated"})
	assert.Error(t, err)
}

func TestLoadSkips(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"big.txt":   "0123456789abcdef",
		"small.txt": "ok",
		"blob.bin":  "MZ\x00\x01",
	})

	res, err := NewLoader(root, Options{MaxFileSize: 8}).Load(context.Background(),
		[]string{"big.txt", "small.txt", "blob.bin", "missing.txt"})
	require.NoError(t, err)

	assert.Equal(t, []string{"small.txt"}, recordPaths(res.Files))
	reasons := map[string]string{}
	for _, s := range res.Skipped {
		reasons[s.Path] = s.Reason
	}
	assert.Equal(t, "larger than 8 bytes", reasons["big.txt"])
	assert.Equal(t, "binary", reasons["blob.bin"])
	assert.Equal(t, "not found", reasons["missing.txt"])
}

func TestLoadOutsideRootUsesAbsolutePath(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	writeTree(t, other, map[string]string{"notes.txt": "n"})

	abs := filepath.Join(other, "notes.txt")
	res, err := NewLoader(root, Options{}).Load(context.Background(), []string{abs})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.ToSlash(abs), res.Files[0].Path)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(t.TempDir(), Options{}).Load(ctx, []string{"."})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReload(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/[id]/page.tsx": "export default 1",
		"a.go":              "package a",
	})

	res, err := NewLoader(root, Options{}).Reload(context.Background(), []string{"app/[id]/page.tsx", "a.go", "gone.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/[id]/page.tsx", "a.go"}, recordPaths(res.Files))
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "gone.go", res.Skipped[0].Path)
}

func TestDisplayPathIsNFC(t *testing.T) {
	l := NewLoader("/work", Options{})
	decomposed := "cafe\u0301.md"
	assert.Equal(t, "caf\u00e9.md", l.display(filepath.Join("/work", decomposed)))
}
