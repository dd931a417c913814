package dialogs

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrepeneur4lyf/taskpad/internal/tui/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickerFixture(t *testing.T) (*FilePicker, string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"alpha.go", "beta.go", "gamma.md", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "inner.txt"), []byte("x"), 0644))

	p := NewFilePicker(theme.NewDefaultTheme(), dir)
	p.SetSize(100, 40)
	load(p, p.Init())
	return p, dir
}

func load(p *FilePicker, cmd tea.Cmd) {
	if cmd != nil {
		p.Update(cmd())
	}
}

func press(p *FilePicker, s string) tea.Cmd {
	var msg tea.KeyMsg
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		msg = tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	_, cmd := p.Update(msg)
	return cmd
}

func visibleNames(p *FilePicker) []string {
	out := make([]string, len(p.visible))
	for i, idx := range p.visible {
		out[i] = p.entries[idx].name
	}
	return out
}

func TestPickerListsDirectoriesFirst(t *testing.T) {
	p, _ := pickerFixture(t)
	assert.Equal(t, []string{"sub", "alpha.go", "beta.go", "gamma.md"}, visibleNames(p))

	load(p, press(p, "H"))
	assert.Contains(t, visibleNames(p), ".hidden")
}

func TestPickerFuzzyFilter(t *testing.T) {
	p, dir := pickerFixture(t)

	press(p, "/")
	require.True(t, p.filtering)
	press(p, "g")
	press(p, "m")
	assert.Equal(t, []string{"gamma.md"}, visibleNames(p))

	press(p, "enter")
	assert.False(t, p.filtering)
	assert.Equal(t, "gm", p.filter.Value())

	cmd := press(p, "ctrl+s")
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Paths: []string{filepath.Join(dir, "gamma.md")}}, cmd())
}

func TestPickerFilterEscClears(t *testing.T) {
	p, _ := pickerFixture(t)

	press(p, "/")
	press(p, "b")
	require.ElementsMatch(t, []string{"beta.go", "sub"}, visibleNames(p))
	press(p, "esc")
	assert.False(t, p.filtering)
	assert.Equal(t, "", p.filter.Value())
	assert.Len(t, visibleNames(p), 4)
}

func TestPickerMultiSelect(t *testing.T) {
	p, dir := pickerFixture(t)

	press(p, "down")
	press(p, "space")
	press(p, "down")
	press(p, "down")
	press(p, "space")

	cmd := press(p, "ctrl+s")
	require.NotNil(t, cmd)
	assert.Equal(t, FileSelectedMsg{Paths: []string{
		filepath.Join(dir, "alpha.go"),
		filepath.Join(dir, "gamma.md"),
	}}, cmd())
	assert.Empty(t, p.Selected())
}

func TestPickerNavigation(t *testing.T) {
	p, dir := pickerFixture(t)

	load(p, press(p, "enter"))
	assert.Equal(t, filepath.Join(dir, "sub"), p.CurrentPath())
	assert.Equal(t, []string{"inner.txt"}, visibleNames(p))

	load(p, press(p, "backspace"))
	assert.Equal(t, dir, p.CurrentPath())
}

func TestPickerCancel(t *testing.T) {
	p, _ := pickerFixture(t)
	cmd := press(p, "esc")
	require.NotNil(t, cmd)
	assert.Equal(t, DialogCloseMsg{}, cmd())
}

func TestPickerIgnoresStaleListing(t *testing.T) {
	p, _ := pickerFixture(t)
	p.Update(directoryLoadedMsg{path: "/elsewhere"})
	assert.Len(t, visibleNames(p), 4)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "/a/b", truncatePath("/a/b", 10))
	assert.Equal(t, "…/c/d.go", truncatePath("/aaaa/bbbb/c/d.go", 8))
}
