// Package tui is the interactive editor: a task pane, the attached files,
// a file picker and a scroll-restoring preview.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
	"github.com/entrepeneur4lyf/taskpad/internal/events"
	"github.com/entrepeneur4lyf/taskpad/internal/export"
	"github.com/entrepeneur4lyf/taskpad/internal/highlight"
	"github.com/entrepeneur4lyf/taskpad/internal/ingest"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/dialogs"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/editor"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/files"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/status"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/components/toast"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/layout"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
)

// Document is the state the TUI edits
type Document interface {
	Content() string
	SetContent(s string)
	Files() document.Collection
	AddFiles(batch []document.FileRecord) int
	DeleteFile(index int) (removed document.FileRecord, closed bool, err error)
	ClearFiles()
	RefreshFiles(batch []document.FileRecord) []document.Change
	OpenPreview(index int) (document.FileRecord, int, error)
	ClosePreview()
	Scroll(offset int)
	Snapshot() document.Snapshot
	Flush()
	Close()
}

// Loader turns picked paths into file records
type Loader interface {
	Load(ctx context.Context, inputs []string) (ingest.Result, error)
	Reload(ctx context.Context, paths []string) (ingest.Result, error)
}

// Watcher reports attached files that changed on disk
type Watcher interface {
	Track(paths []string) error
	Changes() <-chan string
}

// Options configures the TUI
type Options struct {
	Theme        string
	PreviewStyle string
	LineNumbers  bool
	WorkingDir   string
	Export       export.Sources
	Loader       Loader
	Broker       *events.Broker[document.Notice]
	// Watcher is optional; without it files are only reloaded on request.
	Watcher Watcher
	// Copy defaults to the system clipboard.
	Copy func(text string) error
}

type pane int

const (
	paneEditor pane = iota
	paneFiles
)

type filesLoadedMsg struct {
	result ingest.Result
	err    error
}

type fileChangedMsg struct {
	path string
}

type filesReloadedMsg struct {
	result ingest.Result
	err    error
	// quiet suppresses the toast when nothing changed.
	quiet bool
}

type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	doc     Document
	loader  Loader
	watcher Watcher
	exports export.Sources
	copy    func(string) error
	notices <-chan events.Event[document.Notice]
	theme   *theme.Theme

	editor  *editor.Model
	files   *files.Model
	status  *status.Model
	toasts  *toast.Manager
	picker  *dialogs.FilePicker
	preview *dialogs.PreviewDialog
	help    *dialogs.HelpDialog

	focus      pane
	showPicker bool
	showHelp   bool
	width      int
	height     int
	closed     bool
}

// New builds the root model over doc
func New(ctx context.Context, doc Document, opts Options) *Model {
	th := theme.Get(opts.Theme)
	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		ctx:     ctx,
		cancel:  cancel,
		doc:     doc,
		loader:  opts.Loader,
		watcher: opts.Watcher,
		exports: opts.Export,
		copy:    opts.Copy,
		theme:   th,
		editor:  editor.New(th, doc.Content()),
		files:   files.New(th),
		status:  status.New(th),
		toasts:  toast.NewManager(th),
		picker:  dialogs.NewFilePicker(th, opts.WorkingDir),
		preview: dialogs.NewPreviewDialog(th, highlight.NewRenderer(opts.PreviewStyle, opts.LineNumbers)),
		help:    dialogs.NewHelpDialog(th, keys),
	}
	if m.copy == nil {
		m.copy = export.Copy
	}
	if opts.Broker != nil {
		m.notices = opts.Broker.Subscribe(ctx, events.OfType(
			events.StorePersisted,
			events.StorePersistFailed,
			events.FilesChanged,
			events.ContentChanged,
		))
	}

	m.editor.Focus()
	m.status.SetHelp(shortHelp())
	m.refreshFiles()
	return m
}

func shortHelp() string {
	parts := make([]string, 0, len(keys.ShortHelp()))
	for _, b := range keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.editor.Init(), m.waitForNotice(), m.waitForChange())
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch, ctx := m.watcher.Changes(), m.ctx
	return func() tea.Msg {
		select {
		case path := <-ch:
			return fileChangedMsg{path: path}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	ch := m.notices
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return status.NoticeMsg(ev)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case status.NoticeMsg:
		m.status.Update(msg)
		return m, m.waitForNotice()

	case toast.ShowToastMsg, toast.DismissToastMsg:
		var cmd tea.Cmd
		m.toasts, cmd = m.toasts.Update(msg)
		return m, cmd

	case dialogs.DialogCloseMsg:
		m.closeDialog()
		return m, nil

	case files.OpenPreviewMsg:
		return m, m.openPreview(msg.Index)

	case files.DeleteFileMsg:
		_, closed, err := m.doc.DeleteFile(msg.Index)
		if err != nil {
			log.Warn("ignoring delete", "index", msg.Index, "err", err)
			return m, nil
		}
		if closed {
			m.preview.Close()
		}
		m.refreshFiles()
		return m, nil

	case files.ClearFilesMsg:
		m.doc.ClearFiles()
		m.preview.Close()
		m.refreshFiles()
		return m, toast.New("Removed all files", toast.Info)

	case files.OpenPickerMsg:
		return m, m.openPicker()

	case dialogs.FileSelectedMsg:
		m.showPicker = false
		return m, m.ingest(msg.Paths)

	case filesLoadedMsg:
		return m, m.addLoaded(msg)

	case fileChangedMsg:
		return m, tea.Batch(m.reload([]string{msg.path}, true), m.waitForChange())

	case filesReloadedMsg:
		return m, m.applyReloaded(msg)

	case tea.MouseMsg:
		if m.preview.IsOpen() {
			return m, m.updatePreview(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.shutdown()
			return m, tea.Quit
		}
		return m, m.handleKey(msg)
	}

	_, pickerCmd := m.picker.Update(msg)
	_, editorCmd := m.editor.Update(msg)
	return m, tea.Batch(pickerCmd, editorCmd)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case m.preview.IsOpen():
		return m.updatePreview(msg)
	case m.showPicker:
		_, cmd := m.picker.Update(msg)
		return cmd
	case m.showHelp:
		_, cmd := m.help.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, keys.Export):
		return m.exportPrompt()
	case key.Matches(msg, keys.Add):
		return m.openPicker()
	case key.Matches(msg, keys.Reload):
		return m.reloadAll()
	case key.Matches(msg, keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, keys.Focus):
		return m.toggleFocus()
	}

	if m.focus == paneFiles {
		var cmd tea.Cmd
		m.files, cmd = m.files.Update(msg)
		return cmd
	}

	if key.Matches(msg, keys.Leave) {
		return m.toggleFocus()
	}
	changed, cmd := m.editor.Update(msg)
	if changed {
		m.doc.SetContent(m.editor.Value())
	}
	return cmd
}

// updatePreview forwards msg to the viewport and records any scroll.
func (m *Model) updatePreview(msg tea.Msg) tea.Cmd {
	before := m.preview.Offset()
	_, cmd := m.preview.Update(msg)
	if after := m.preview.Offset(); after != before && m.preview.IsOpen() {
		m.doc.Scroll(after)
	}
	return cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == paneEditor {
		m.focus = paneFiles
		m.editor.Blur()
		m.files.Focus()
		return nil
	}
	m.focus = paneEditor
	m.files.Blur()
	return m.editor.Focus()
}

func (m *Model) openPreview(index int) tea.Cmd {
	file, offset, err := m.doc.OpenPreview(index)
	if err != nil {
		log.Warn("ignoring preview", "index", index, "err", err)
		return nil
	}
	m.preview.Open(file, offset)
	return nil
}

func (m *Model) openPicker() tea.Cmd {
	if m.loader == nil {
		return toast.New("Adding files is not available", toast.Error)
	}
	m.showPicker = true
	return m.picker.Init()
}

func (m *Model) closeDialog() {
	switch {
	case m.preview.IsOpen():
		m.preview.Close()
		m.doc.ClosePreview()
	case m.showPicker:
		m.showPicker = false
	case m.showHelp:
		m.showHelp = false
	}
}

func (m *Model) ingest(paths []string) tea.Cmd {
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		res, err := loader.Load(ctx, paths)
		return filesLoadedMsg{result: res, err: err}
	}
}

func (m *Model) addLoaded(msg filesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		log.Error("failed to load files", "err", msg.err)
		return toast.New(fmt.Sprintf("Could not add files: %v", msg.err), toast.Error)
	}
	for _, s := range msg.result.Skipped {
		log.Debug("skipped file", "path", s.Path, "reason", s.Reason)
	}

	added := m.doc.AddFiles(msg.result.Files)
	m.refreshFiles()

	text := fmt.Sprintf("Added %d file(s)", added)
	if dup := len(msg.result.Files) - added; dup > 0 {
		text += fmt.Sprintf(", %d already attached", dup)
	}
	if n := len(msg.result.Skipped); n > 0 {
		text += fmt.Sprintf(", %d skipped", n)
	}
	kind := toast.Success
	if added == 0 {
		kind = toast.Info
	}
	return toast.New(text, kind)
}

func (m *Model) reloadAll() tea.Cmd {
	all := m.doc.Files()
	if len(all) == 0 {
		return toast.New("No files to reload", toast.Info)
	}
	paths := make([]string, len(all))
	for i, f := range all {
		paths[i] = f.Path
	}
	return m.reload(paths, false)
}

func (m *Model) reload(paths []string, quiet bool) tea.Cmd {
	if m.loader == nil {
		return nil
	}
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		res, err := loader.Reload(ctx, paths)
		return filesReloadedMsg{result: res, err: err, quiet: quiet}
	}
}

// applyReloaded replaces changed records and keeps an open preview of one of
// them in step. Files that disappeared stay attached as they were.
func (m *Model) applyReloaded(msg filesReloadedMsg) tea.Cmd {
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		log.Error("failed to reload files", "err", msg.err)
		return toast.New(fmt.Sprintf("Could not reload: %v", msg.err), toast.Error)
	}
	for _, s := range msg.result.Skipped {
		log.Debug("attached file not reloaded", "path", s.Path, "reason", s.Reason)
	}

	changes := m.doc.RefreshFiles(msg.result.Files)
	for _, c := range changes {
		m.preview.Replace(c.New)
	}
	m.refreshFiles()

	switch {
	case len(changes) == 1:
		added, removed := ingest.DiffStat(changes[0].Old.Content, changes[0].New.Content)
		return toast.New(fmt.Sprintf("Reloaded %s (+%d -%d)", changes[0].New.Path, added, removed), toast.Info)
	case len(changes) > 1:
		return toast.New(fmt.Sprintf("Reloaded %d files", len(changes)), toast.Info)
	case !msg.quiet:
		return toast.New("Files are up to date", toast.Info)
	}
	return nil
}

// exportPrompt snapshots the document now and copies it off the update loop.
func (m *Model) exportPrompt() tea.Cmd {
	text := export.Build(m.exports, m.doc.Snapshot())
	if text == "" {
		return toast.New("Nothing to copy", toast.Info)
	}
	copyFn := m.copy
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			log.Error("failed to copy prompt", "err", err)
			return toast.ShowToastMsg{Message: err.Error(), Kind: toast.Error}
		}
		return toast.ShowToastMsg{Message: fmt.Sprintf("Copied prompt (%d bytes)", len(text)), Kind: toast.Success}
	}
}

func (m *Model) refreshFiles() {
	fs := m.doc.Files()
	m.files.SetFiles(fs)
	m.status.SetFiles(fs)

	if m.watcher == nil {
		return
	}
	paths := make([]string, len(fs))
	for i, f := range fs {
		paths[i] = f.Path
	}
	if err := m.watcher.Track(paths); err != nil {
		log.Debug("some attached files are not watched", "err", err)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	main := max(height-1, 2)

	editorHeight := max(main*3/5, 5)
	m.editor.SetSize(width, editorHeight)
	m.files.SetSize(width, max(main-editorHeight, 3))
	m.status.SetWidth(width)
	m.picker.SetSize(width, main)
	m.help.SetSize(width, main)
	m.preview.SetSize(width, main)
}

// shutdown keeps pending edits and tears the document down. It is safe to
// call more than once.
func (m *Model) shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	m.doc.Flush()
	m.doc.Close()
	m.cancel()
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	main := lipgloss.JoinVertical(lipgloss.Left, m.editor.View(), m.files.View())
	mainHeight := max(m.height-1, 1)

	switch {
	case m.preview.IsOpen():
		main = layout.PlaceOverlay(m.width, mainHeight, m.preview.View(), main, layout.Top)
	case m.showPicker:
		main = layout.PlaceOverlay(m.width, mainHeight, m.picker.View(), main, layout.Center)
	case m.showHelp:
		main = layout.PlaceOverlay(m.width, mainHeight, m.help.View(), main, layout.Center)
	}
	main = m.toasts.RenderOverlay(m.width, mainHeight, main)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.status.View())
}

// Run starts the TUI and blocks until it exits. The document is flushed and
// closed on the way out however the program ends.
func Run(ctx context.Context, doc Document, opts Options) error {
	model := New(ctx, doc, opts)
	defer model.shutdown()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
