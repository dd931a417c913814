package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrepeneur4lyf/taskpad/internal/debounce"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/entrepeneur4lyf/taskpad/internal/events"
	"github.com/entrepeneur4lyf/taskpad/internal/export"
	"github.com/entrepeneur4lyf/taskpad/internal/ingest"
	"github.com/entrepeneur4lyf/taskpad/internal/kvstore"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/dialogs"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/files"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/status"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/toast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	result ingest.Result
	err    error
	inputs []string

	reloaded  ingest.Result
	reloadErr error
	reloads   [][]string
}

func (l *fakeLoader) Load(_ context.Context, inputs []string) (ingest.Result, error) {
	l.inputs = inputs
	return l.result, l.err
}

func (l *fakeLoader) Reload(_ context.Context, paths []string) (ingest.Result, error) {
	l.reloads = append(l.reloads, paths)
	return l.reloaded, l.reloadErr
}

type fakeWatcher struct {
	tracked [][]string
	changes chan string
}

func (w *fakeWatcher) Track(paths []string) error {
	w.tracked = append(w.tracked, paths)
	return nil
}

func (w *fakeWatcher) Changes() <-chan string {
	return w.changes
}

type harness struct {
	ctx    context.Context
	store  *kvstore.MemoryStore
	clock  *debounce.ManualClock
	broker *events.Broker[document.Notice]
	doc    *document.Manager
	loader *fakeLoader
	copied []string
	model  *Model
}

func newHarness(t *testing.T, seed ...document.FileRecord) *harness {
	t.Helper()
	h := &harness{
		ctx:    context.Background(),
		store:  kvstore.NewMemoryStore(),
		clock:  debounce.NewManualClock(time.Unix(0, 0)),
		broker: events.NewBroker[document.Notice](),
		loader: &fakeLoader{},
	}
	h.doc = document.New(h.ctx, h.store, document.WithClock(h.clock), document.WithBroker(h.broker))
	if len(seed) > 0 {
		h.doc.AddFiles(seed)
	}

	h.model = New(h.ctx, h.doc, Options{
		PreviewStyle: "monokai",
		WorkingDir:   t.TempDir(),
		Export:       export.Sources{Role: "reviewer"},
		Loader:       h.loader,
		Broker:       h.broker,
		Copy: func(text string) error {
			h.copied = append(h.copied, text)
			return nil
		},
	})
	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	t.Cleanup(h.model.shutdown)
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.model.Update(msg)
	return cmd
}

// run executes an immediate command and feeds its messages back in.
func (h *harness) run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, h.run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	h.send(msg)
	return []tea.Msg{msg}
}

func (h *harness) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.store.Get(h.ctx, key)
	require.NoError(t, err)
	return v, ok
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func longFile(path string, lines int) document.FileRecord {
	var b strings.Builder
	for i := 1; i <= lines; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return document.FileRecord{Name: path, Path: path, Size: int64(b.Len()), Extension: "txt", Content: b.String()}
}

func TestEditorWritesContent(t *testing.T) {
	h := newHarness(t)

	h.send(runes("h"))
	h.send(runes("i"))
	assert.Equal(t, "hi", h.doc.Content())

	_, ok := h.stored(t, document.ContentKey)
	assert.False(t, ok, "content is debounced")

	h.clock.Advance(500 * time.Millisecond)
	v, ok := h.stored(t, document.ContentKey)
	require.True(t, ok)
	assert.Equal(t, "hi", v)
}

func TestEditorStartsWithHydratedContent(t *testing.T) {
	h := newHarness(t)
	h.doc.SetContent("existing")

	m := New(h.ctx, h.doc, Options{})
	assert.Equal(t, "existing", m.editor.Value())
}

func TestFocusSwitching(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 3))
	require.Equal(t, paneEditor, h.model.focus)

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneFiles, h.model.focus)

	// Letters now drive the list, not the editor.
	h.send(runes("j"))
	assert.Equal(t, "", h.doc.Content())

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneEditor, h.model.focus)

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, paneFiles, h.model.focus)
}

func TestPreviewRestoresAndRecordsScroll(t *testing.T) {
	file := longFile("notes/long.txt", 100)
	h := newHarness(t, file)
	require.NoError(t, h.store.Set(h.ctx, document.ScrollKey(file.Path), "7"))

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	msgs := h.run(h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	require.Equal(t, []tea.Msg{files.OpenPreviewMsg{Index: 0}}, msgs)

	require.True(t, h.model.preview.IsOpen())
	assert.Equal(t, document.PreviewOpen, h.doc.PreviewState())
	assert.Equal(t, 7, h.model.preview.Offset())

	h.send(tea.KeyMsg{Type: tea.KeyDown})
	h.send(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 9, h.model.preview.Offset())

	v, ok := h.stored(t, document.ScrollKey(file.Path))
	require.True(t, ok)
	assert.Equal(t, "9", v)

	h.run(h.send(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, h.model.preview.IsOpen())
	assert.Equal(t, document.PreviewClosed, h.doc.PreviewState())

	// Reopening lands where the user left off.
	h.run(h.send(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.Equal(t, 9, h.model.preview.Offset())
}

func TestPreviewOffsetWaitsForSize(t *testing.T) {
	file := longFile("long.txt", 100)
	h := newHarness(t, file)
	require.NoError(t, h.store.Set(h.ctx, document.ScrollKey(file.Path), strconv.Itoa(40)))

	m := New(h.ctx, h.doc, Options{})
	m.openPreview(0)
	assert.Equal(t, 0, m.preview.Offset())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Equal(t, 40, m.preview.Offset())
}

func TestDeleteClosesActivePreview(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 3), longFile("b.txt", 3))

	h.model.openPreview(1)
	require.True(t, h.model.preview.IsOpen())

	h.send(files.DeleteFileMsg{Index: 1})
	assert.False(t, h.model.preview.IsOpen())
	assert.Equal(t, document.PreviewClosed, h.doc.PreviewState())
	require.Len(t, h.doc.Files(), 1)
	assert.Equal(t, "a.txt", h.doc.Files()[0].Path)
}

func TestDeleteOtherFileKeepsPreview(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 3), longFile("b.txt", 3))

	h.model.openPreview(1)
	require.True(t, h.model.preview.IsOpen())

	h.send(files.DeleteFileMsg{Index: 0})
	assert.True(t, h.model.preview.IsOpen())
	assert.Equal(t, "b.txt", h.model.preview.File().Path)
	assert.Equal(t, document.PreviewOpen, h.doc.PreviewState())
}

func TestDeleteOutOfRangeIsIgnored(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 3))

	assert.Nil(t, h.send(files.DeleteFileMsg{Index: 5}))
	assert.Len(t, h.doc.Files(), 1)
}

func TestClearAll(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 3), longFile("b.txt", 3))
	h.model.openPreview(0)

	h.send(files.ClearFilesMsg{})
	assert.Empty(t, h.doc.Files())
	assert.False(t, h.model.preview.IsOpen())
	assert.Equal(t, document.PreviewClosed, h.doc.PreviewState())
}

func TestPickerSelectionAddsFiles(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 1))
	h.loader.result = ingest.Result{
		Files:   []document.FileRecord{longFile("a.txt", 1), longFile("b.txt", 1)},
		Skipped: []ingest.Skip{{Path: "blob.bin", Reason: "binary"}},
	}

	h.send(files.OpenPickerMsg{})
	require.True(t, h.model.showPicker)

	msgs := h.run(h.send(dialogs.FileSelectedMsg{Paths: []string{"/tmp/a.txt", "/tmp/b.txt"}}))
	require.Len(t, msgs, 1)
	assert.False(t, h.model.showPicker)
	assert.Equal(t, []string{"/tmp/a.txt", "/tmp/b.txt"}, h.loader.inputs)

	got := h.doc.Files()
	require.Len(t, got, 2)
	assert.Equal(t, "b.txt", got[1].Path)
}

func TestLoadFailureShowsToast(t *testing.T) {
	h := newHarness(t)
	h.loader.err = errors.New("bad pattern")

	cmd := h.send(filesLoadedMsg{err: h.loader.err})
	require.NotNil(t, cmd)
	msg, ok := cmd().(toast.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, toast.Error, msg.Kind)
	assert.Contains(t, msg.Message, "bad pattern")
}

func TestExportCopiesPrompt(t *testing.T) {
	h := newHarness(t, longFile("a.txt", 1))
	h.doc.SetContent("fix it")

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	msg, ok := cmd().(toast.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, toast.Success, msg.Kind)

	require.Len(t, h.copied, 1)
	assert.Contains(t, h.copied[0], "# Role\n\nreviewer")
	assert.Contains(t, h.copied[0], "# Task\n\nfix it")
	assert.Contains(t, h.copied[0], "## a.txt")
}

func TestQuitFlushesThenCloses(t *testing.T) {
	h := newHarness(t)
	h.send(runes("x"))
	require.True(t, h.doc.Pending())

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())

	v, ok := h.stored(t, document.ContentKey)
	require.True(t, ok)
	assert.Equal(t, "x", v)

	// Closed: later edits are never written.
	h.doc.SetContent("late")
	h.clock.Advance(time.Second)
	v, _ = h.stored(t, document.ContentKey)
	assert.Equal(t, "x", v)
}

func TestStatusShowsPersistFailure(t *testing.T) {
	h := newHarness(t)
	h.store.FailWrites(errors.New("quota exceeded"))

	h.doc.SetContent("x")
	h.clock.Advance(time.Second)

	wait := h.model.waitForNotice()
	for i := 0; i < 4 && h.model.status.LastError() == ""; i++ {
		msg := wait()
		_, ok := msg.(status.NoticeMsg)
		require.True(t, ok)
		wait = h.send(msg)
	}
	assert.Contains(t, h.model.status.LastError(), "quota exceeded")
	assert.Contains(t, h.model.View(), "save failed")
}

func TestViewRendersPanes(t *testing.T) {
	h := newHarness(t, longFile("src/main.go", 2))

	view := h.model.View()
	assert.Contains(t, view, "Task")
	assert.Contains(t, view, "Files (1,")
	assert.Contains(t, view, "src/main.go")
	assert.Contains(t, view, "taskpad")
}

func edited(f document.FileRecord, extra string) document.FileRecord {
	f.Content += extra
	f.Size = int64(len(f.Content))
	return f
}

func TestReloadAllRefreshesChangedFiles(t *testing.T) {
	a, b := longFile("a.txt", 3), longFile("b.txt", 60)
	h := newHarness(t, a, b)
	h.model.openPreview(1)
	for i := 0; i < 20; i++ {
		h.send(tea.KeyMsg{Type: tea.KeyDown})
	}
	require.Equal(t, 20, h.model.preview.Offset())

	h.loader.reloaded = ingest.Result{Files: []document.FileRecord{a, edited(b, "line 61\nline 62\n")}}

	// Keys go to the open preview, so reload directly.
	cmd := h.model.reloadAll()
	require.NotNil(t, cmd)
	msg := cmd()
	reloaded, ok := msg.(filesReloadedMsg)
	require.True(t, ok)
	assert.Equal(t, [][]string{{"a.txt", "b.txt"}}, h.loader.reloads)

	cmd = h.send(reloaded)
	require.NotNil(t, cmd)
	note, ok := cmd().(toast.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, "Reloaded b.txt (+2 -0)", note.Message)

	assert.Contains(t, h.doc.Files()[1].Content, "line 62")
	assert.Contains(t, h.model.preview.File().Content, "line 62")
	assert.Equal(t, 20, h.model.preview.Offset(), "scroll survives a reload")
}

func TestReloadAllWhenNothingChanged(t *testing.T) {
	a := longFile("a.txt", 3)
	h := newHarness(t, a)
	h.loader.reloaded = ingest.Result{Files: []document.FileRecord{a}}

	msgs := h.run(h.send(tea.KeyMsg{Type: tea.KeyCtrlR}))
	require.Len(t, msgs, 1)
	cmd := h.send(msgs[0])
	require.NotNil(t, cmd)
	note, ok := cmd().(toast.ShowToastMsg)
	require.True(t, ok)
	assert.Equal(t, "Files are up to date", note.Message)
	assert.False(t, h.doc.Pending())
}

func TestWatcherChangeReloadsOneFile(t *testing.T) {
	a := longFile("a.txt", 3)
	w := &fakeWatcher{changes: make(chan string, 1)}

	store := kvstore.NewMemoryStore()
	clock := debounce.NewManualClock(time.Unix(0, 0))
	doc := document.New(context.Background(), store, document.WithClock(clock))
	doc.AddFiles([]document.FileRecord{a})

	loader := &fakeLoader{reloaded: ingest.Result{Files: []document.FileRecord{edited(a, "more\n")}}}
	m := New(context.Background(), doc, Options{Loader: loader, Watcher: w})
	t.Cleanup(m.shutdown)
	assert.Equal(t, [][]string{{"a.txt"}}, w.tracked)

	w.changes <- "a.txt"
	msg := m.waitForChange()()
	assert.Equal(t, fileChangedMsg{path: "a.txt"}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.NotEmpty(t, batch)

	reloaded, ok := batch[0]().(filesReloadedMsg)
	require.True(t, ok)
	assert.True(t, reloaded.quiet)
	assert.Equal(t, [][]string{{"a.txt"}}, loader.reloads)

	m.Update(reloaded)
	assert.Contains(t, doc.Files()[0].Content, "more")
}

func TestWatcherWaitEndsOnShutdown(t *testing.T) {
	w := &fakeWatcher{changes: make(chan string)}
	doc := document.New(context.Background(), kvstore.NewMemoryStore())
	m := New(context.Background(), doc, Options{Watcher: w})

	wait := m.waitForChange()
	m.shutdown()
	assert.Nil(t, wait())
}
