package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace is a project directory plus an isolated home and data dir backed
// by the TOML store, so state survives between invocations.
type workspace struct {
	t    *testing.T
	root string
	data string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	w := &workspace{t: t, root: t.TempDir(), data: filepath.Join(home, "data")}
	t.Setenv("TASKPAD_DATA_DIRECTORY", w.data)
	t.Setenv("TASKPAD_STORE_BACKEND", "toml")
	return w
}

func (w *workspace) write(rel, content string) {
	w.t.Helper()
	p := filepath.Join(w.root, filepath.FromSlash(rel))
	require.NoError(w.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(w.t, os.WriteFile(p, []byte(content), 0644))
}

func (w *workspace) runWithInput(stdin string, args ...string) (string, error) {
	w.t.Helper()
	debug, cfgFile, exportCopy, refreshDiff = false, "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--cwd", w.root}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	closeSession()
	return out.String(), err
}

func (w *workspace) run(args ...string) string {
	w.t.Helper()
	out, err := w.runWithInput("", args...)
	require.NoError(w.t, err)
	return out
}

func TestAddListRemoveClear(t *testing.T) {
	w := newWorkspace(t)
	w.write("main.go", "package main\n")
	w.write("docs/guide.md", "# Guide\n")

	out := w.run("add", "main.go", "docs/*.md", "missing.txt")
	assert.Contains(t, out, "added 2 of 2 files")
	assert.Contains(t, out, "skipped missing.txt: not found")

	out = w.run("add", "main.go")
	assert.Contains(t, out, "added 0 of 1 files")

	out = w.run("list")
	assert.Equal(t,
		"  0  main.go · 13.00 B · go\n"+
			"  1  docs/guide.md · 8.00 B · md\n"+
			"2 files, 21.00 B\n", out)

	out = w.run("rm", "0")
	assert.Equal(t, "removed main.go\n", out)
	assert.Contains(t, w.run("list"), "  0  docs/guide.md")

	out = w.run("clear")
	assert.Equal(t, "removed 1 files\n", out)
	assert.Equal(t, "0 files, 0.00 B\n", w.run("list"))

	_, err := os.Stat(filepath.Join(w.data, "state.toml"))
	assert.NoError(t, err)
}

func TestRemoveErrors(t *testing.T) {
	w := newWorkspace(t)
	w.write("a.txt", "a")
	w.run("add", "a.txt")

	_, err := w.runWithInput("", "rm", "3")
	assert.ErrorIs(t, err, document.ErrIndexOutOfRange)

	_, err = w.runWithInput("", "rm", "first")
	assert.ErrorContains(t, err, "index must be a number")

	assert.Contains(t, w.run("list"), "1 files")
}

func TestContent(t *testing.T) {
	w := newWorkspace(t)

	assert.Equal(t, "", w.run("content"))

	w.run("content", "Fix", "the", "flaky", "test")
	assert.Equal(t, "Fix the flaky test", w.run("content"))

	_, err := w.runWithInput("line one\nline two\n", "content", "-")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", w.run("content"))
}

func TestExport(t *testing.T) {
	w := newWorkspace(t)
	w.write("role.md", "You review Go code.")
	w.write("x.go", "package x\n")
	t.Setenv("TASKPAD_EXPORT_ROLE", "@role.md")
	t.Setenv("TASKPAD_EXPORT_OUTPUT", "Reply with a patch.")

	w.run("content", "Tidy x.")
	w.run("add", "x.go")

	want := "# Role\n\nYou review Go code.\n\n" +
		"# Task\n\nTidy x.\n\n" +
		"# Files\n\n## x.go\n\n```go\npackage x\n```\n\n" +
		"# Output\n\nReply with a patch.\n"
	assert.Equal(t, want, w.run("export"))

	var copied string
	orig := copyText
	copyText = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyText = orig })

	out := w.run("export", "--copy")
	assert.Equal(t, want, copied)
	assert.Contains(t, out, "copied")
}

func TestExportMissingSource(t *testing.T) {
	w := newWorkspace(t)
	t.Setenv("TASKPAD_EXPORT_RULES", "@nowhere.md")

	_, err := w.runWithInput("", "export")
	assert.ErrorContains(t, err, "nowhere.md")
}

func TestBadConfigFails(t *testing.T) {
	w := newWorkspace(t)
	t.Setenv("TASKPAD_STORE_BACKEND", "floppy")

	_, err := w.runWithInput("", "list")
	assert.ErrorContains(t, err, "failed to load configuration")
	assert.Nil(t, current)
}

func TestRefresh(t *testing.T) {
	w := newWorkspace(t)
	w.write("a.go", "package a\n")
	w.write("b.go", "package b\n")
	w.run("add", "a.go", "b.go")

	w.write("b.go", "package b\n\nfunc B() {}\n")
	require.NoError(t, os.Remove(filepath.Join(w.root, "a.go")))

	out := w.run("refresh")
	assert.Contains(t, out, "updated b.go (+2 -0)")
	assert.Contains(t, out, "kept a.go: not found")
	assert.Contains(t, out, "1 of 2 files changed")

	w.write("b.go", "package b\n")
	out = w.run("refresh", "--diff")
	assert.Contains(t, out, "--- a/b.go")
	assert.Contains(t, out, "-func B() {}")

	assert.Contains(t, w.run("refresh"), "0 of 2 files changed")
	assert.Contains(t, w.run("export"), "## a.go")
}

func TestInfo(t *testing.T) {
	w := newWorkspace(t)

	out := w.run("info")
	assert.Contains(t, out, "config:   (none, using defaults)")
	assert.Contains(t, out, "data:     "+w.data)
	assert.Contains(t, out, "store:    toml "+filepath.Join(w.data, "state.toml"))
	assert.Contains(t, out, "logs:     "+filepath.Join(w.data, "logs"))
}
