package dialogs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/taskpad/internal/format"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FileSelectedMsg is sent when files are selected
type FileSelectedMsg struct {
	Paths []string
}

type pickerEntry struct {
	name string
	dir  bool
	size int64
}

// FilePicker is a directory browser with multi-select and a fuzzy filter
type FilePicker struct {
	theme         *theme.Theme
	width         int
	height        int
	currentPath   string
	entries       []pickerEntry
	visible       []int
	selectedIndex int
	selectedFiles map[string]bool
	showHidden    bool
	filter        textinput.Model
	filtering     bool
	err           error
}

// NewFilePicker creates a picker starting in dir
func NewFilePicker(th *theme.Theme, dir string) *FilePicker {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.CharLimit = 128

	return &FilePicker{
		theme:         th,
		currentPath:   dir,
		selectedFiles: make(map[string]bool),
		filter:        ti,
	}
}

func (f *FilePicker) Init() tea.Cmd {
	return f.loadDirectory()
}

// SetSize sets the screen size the dialog centres itself in
func (f *FilePicker) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// CurrentPath returns the directory being browsed
func (f *FilePicker) CurrentPath() string {
	return f.currentPath
}

// Selected returns the selected paths in sorted order
func (f *FilePicker) Selected() []string {
	paths := make([]string, 0, len(f.selectedFiles))
	for p := range f.selectedFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (f *FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.SetSize(msg.Width, msg.Height)

	case directoryLoadedMsg:
		if msg.path != f.currentPath {
			return f, nil
		}
		f.err = msg.err
		f.entries = msg.entries
		f.applyFilter()

	case tea.KeyMsg:
		if f.filtering {
			return f, f.updateFilter(msg)
		}

		switch {
		case key.Matches(msg, pickerKeys.Cancel):
			return f, func() tea.Msg { return DialogCloseMsg{} }

		case key.Matches(msg, pickerKeys.Confirm):
			return f, f.handleConfirm()

		case key.Matches(msg, pickerKeys.Filter):
			f.filtering = true
			return f, f.filter.Focus()

		case key.Matches(msg, pickerKeys.Up):
			f.moveUp()

		case key.Matches(msg, pickerKeys.Down):
			f.moveDown()

		case key.Matches(msg, pickerKeys.Enter):
			return f, f.handleEnter()

		case key.Matches(msg, pickerKeys.Back):
			return f, f.navigateUp()

		case key.Matches(msg, pickerKeys.ToggleFile):
			f.toggleCurrentFile()

		case key.Matches(msg, pickerKeys.ToggleHidden):
			f.showHidden = !f.showHidden
			return f, f.loadDirectory()

		case key.Matches(msg, pickerKeys.Home):
			return f, f.navigateHome()
		}
	}

	return f, nil
}

func (f *FilePicker) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, pickerKeys.Cancel):
		f.stopFilter(true)
		return nil
	case key.Matches(msg, pickerKeys.Enter):
		f.stopFilter(false)
		return nil
	case msg.Type == tea.KeyUp:
		f.moveUp()
		return nil
	case msg.Type == tea.KeyDown:
		f.moveDown()
		return nil
	}

	before := f.filter.Value()
	var cmd tea.Cmd
	f.filter, cmd = f.filter.Update(msg)
	if f.filter.Value() != before {
		f.applyFilter()
	}
	return cmd
}

// stopFilter leaves filter mode, optionally dropping the query.
func (f *FilePicker) stopFilter(clear bool) {
	f.filtering = false
	f.filter.Blur()
	if clear {
		f.filter.SetValue("")
		f.applyFilter()
	}
}

// applyFilter recomputes the visible entries. With a query they are ranked
// by fuzzy match distance, otherwise they keep directory order.
func (f *FilePicker) applyFilter() {
	f.selectedIndex = 0
	query := strings.TrimSpace(f.filter.Value())
	if query == "" {
		f.visible = make([]int, len(f.entries))
		for i := range f.entries {
			f.visible[i] = i
		}
		return
	}

	names := make([]string, len(f.entries))
	for i, e := range f.entries {
		names[i] = e.name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	f.visible = make([]int, len(ranks))
	for i, r := range ranks {
		f.visible[i] = r.OriginalIndex
	}
}

func (f *FilePicker) current() (pickerEntry, bool) {
	if f.selectedIndex < 0 || f.selectedIndex >= len(f.visible) {
		return pickerEntry{}, false
	}
	return f.entries[f.visible[f.selectedIndex]], true
}

func (f *FilePicker) View() string {
	if f.width == 0 || f.height == 0 {
		return ""
	}

	dialogWidth := min(f.width-4, 80)
	dialogHeight := min(f.height-2, 30)
	inner := dialogWidth - 4

	var content strings.Builder

	title := "Add Files"
	if n := len(f.selectedFiles); n > 0 {
		title = fmt.Sprintf("Add Files (%d selected)", n)
	}
	content.WriteString(f.theme.DialogTitleStyle().Width(inner).Align(lipgloss.Center).Render(title))
	content.WriteString("\n")
	content.WriteString(f.theme.MutedText().Render(truncatePath(f.currentPath, inner)))
	content.WriteString("\n")

	if f.filtering || f.filter.Value() != "" {
		f.filter.Width = inner - 3
		content.WriteString(f.filter.View())
	}
	content.WriteString("\n")

	listHeight := max(dialogHeight-7, 1)
	content.WriteString(f.renderFileList(inner, listHeight))
	content.WriteString("\n")

	content.WriteString(f.theme.MutedText().Width(inner).Render(truncate(f.renderHelp(), inner)))

	return f.theme.DialogStyle().
		Width(dialogWidth - 2).
		MaxHeight(dialogHeight).
		Render(content.String())
}

func (f *FilePicker) renderFileList(width, height int) string {
	if f.err != nil {
		return f.theme.ErrorText().Render(truncate(f.err.Error(), width))
	}
	if len(f.visible) == 0 {
		if len(f.entries) == 0 {
			return f.theme.MutedText().Render("Empty directory")
		}
		return f.theme.MutedText().Render("No matches")
	}

	startIdx := 0
	if f.selectedIndex >= height {
		startIdx = f.selectedIndex - height + 1
	}
	endIdx := min(startIdx+height, len(f.visible))

	lines := make([]string, 0, endIdx-startIdx)
	for i := startIdx; i < endIdx; i++ {
		lines = append(lines, f.renderEntry(f.entries[f.visible[i]], i == f.selectedIndex, width))
	}
	return strings.Join(lines, "\n")
}

func (f *FilePicker) renderEntry(entry pickerEntry, active bool, width int) string {
	fullPath := filepath.Join(f.currentPath, entry.name)

	cursor := " "
	if active {
		cursor = ">"
	}

	check := "   "
	if !entry.dir {
		check = "[ ]"
		if f.selectedFiles[fullPath] {
			check = "[x]"
		}
	}

	line := fmt.Sprintf("%s %s %s", cursor, check, entry.name)
	if entry.dir {
		line += "/"
	} else {
		line += "  " + format.Size(entry.size)
	}

	style := f.theme.ListItem()
	switch {
	case f.selectedFiles[fullPath]:
		style = f.theme.ListItemSelected()
	case active:
		style = f.theme.ListItemActive()
	}
	return style.Render(truncate(line, width-1))
}

func (f *FilePicker) renderHelp() string {
	if f.filtering {
		return "type to filter • ↑/↓ navigate • enter keep • esc clear"
	}
	return "↑/↓ navigate • space select • enter open • / filter • backspace up • H hidden • ctrl+s add • esc cancel"
}

func (f *FilePicker) loadDirectory() tea.Cmd {
	path, showHidden := f.currentPath, f.showHidden
	return func() tea.Msg {
		return readDirectory(path, showHidden)
	}
}

// readDirectory lists path with directories first, then by name.
func readDirectory(path string, showHidden bool) directoryLoadedMsg {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return directoryLoadedMsg{path: path, err: err}
	}

	entries := make([]pickerEntry, 0, len(dirEntries))
	for _, e := range dirEntries {
		if !showHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		pe := pickerEntry{name: e.Name(), dir: e.IsDir()}
		if info, err := e.Info(); err == nil && !pe.dir {
			pe.size = info.Size()
		}
		entries = append(entries, pe)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].dir != entries[j].dir {
			return entries[i].dir
		}
		return entries[i].name < entries[j].name
	})
	return directoryLoadedMsg{path: path, entries: entries}
}

func (f *FilePicker) handleEnter() tea.Cmd {
	entry, ok := f.current()
	if !ok {
		return nil
	}
	if entry.dir {
		return f.changeDir(filepath.Join(f.currentPath, entry.name))
	}
	f.toggleCurrentFile()
	return nil
}

// handleConfirm returns the selection, or the file under the cursor when
// nothing is selected.
func (f *FilePicker) handleConfirm() tea.Cmd {
	if len(f.selectedFiles) == 0 {
		entry, ok := f.current()
		if !ok || entry.dir {
			return nil
		}
		f.selectedFiles[filepath.Join(f.currentPath, entry.name)] = true
	}

	paths := f.Selected()
	f.selectedFiles = make(map[string]bool)
	return func() tea.Msg {
		return FileSelectedMsg{Paths: paths}
	}
}

func (f *FilePicker) toggleCurrentFile() {
	entry, ok := f.current()
	if !ok || entry.dir {
		return
	}
	fullPath := filepath.Join(f.currentPath, entry.name)
	if f.selectedFiles[fullPath] {
		delete(f.selectedFiles, fullPath)
	} else {
		f.selectedFiles[fullPath] = true
	}
}

func (f *FilePicker) changeDir(path string) tea.Cmd {
	f.currentPath = path
	f.filter.SetValue("")
	f.entries = nil
	f.visible = nil
	f.selectedIndex = 0
	return f.loadDirectory()
}

func (f *FilePicker) navigateUp() tea.Cmd {
	parent := filepath.Dir(f.currentPath)
	if parent == f.currentPath {
		return nil
	}
	return f.changeDir(parent)
}

func (f *FilePicker) navigateHome() tea.Cmd {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return f.changeDir(home)
}

func (f *FilePicker) moveUp() {
	if f.selectedIndex > 0 {
		f.selectedIndex--
	}
}

func (f *FilePicker) moveDown() {
	if f.selectedIndex < len(f.visible)-1 {
		f.selectedIndex++
	}
}

type directoryLoadedMsg struct {
	path    string
	entries []pickerEntry
	err     error
}

type pickerKeyMap struct {
	Cancel       key.Binding
	Confirm      key.Binding
	Filter       key.Binding
	Up           key.Binding
	Down         key.Binding
	Enter        key.Binding
	Back         key.Binding
	ToggleFile   key.Binding
	ToggleHidden key.Binding
	Home         key.Binding
}

var pickerKeys = pickerKeyMap{
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "add selection"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open/select"),
	),
	Back: key.NewBinding(
		key.WithKeys("backspace", "left", "h"),
		key.WithHelp("backspace", "parent directory"),
	),
	ToggleFile: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle selection"),
	),
	ToggleHidden: key.NewBinding(
		key.WithKeys("H"),
		key.WithHelp("H", "toggle hidden files"),
	),
	Home: key.NewBinding(
		key.WithKeys("~"),
		key.WithHelp("~", "go home"),
	),
}
