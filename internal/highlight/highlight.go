// Package highlight renders file content with terminal syntax highlighting.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// DefaultStyle is used when no style is configured.
const DefaultStyle = "monokai"

// Render highlights content for a terminal. The lexer is picked from the
// extension, then from the content itself, then plain text. Any failure
// returns content unchanged.
func Render(content, extension, style string) string {
	out, err := highlight(content, lexerFor(extension, content), styleFor(style))
	if err != nil {
		return content
	}
	return out
}

func lexerFor(extension, content string) chroma.Lexer {
	ext := strings.TrimPrefix(strings.ToLower(extension), ".")

	var lexer chroma.Lexer
	if ext != "" {
		lexer = lexers.Match("file." + ext)
		if lexer == nil {
			lexer = lexers.Get(ext)
		}
	}
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func styleFor(name string) *chroma.Style {
	if name == "" {
		name = DefaultStyle
	}
	s := styles.Get(name)
	if s == nil {
		return styles.Fallback
	}
	return s
}

func highlight(content string, lexer chroma.Lexer, style *chroma.Style) (string, error) {
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise: %w", err)
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("failed to format: %w", err)
	}
	return buf.String(), nil
}

// Renderer highlights files for the preview and remembers the last results.
type Renderer struct {
	style       string
	lineNumbers bool
	gutter      lipgloss.Style
	cache       *Cache
}

// NewRenderer creates a renderer for the named chroma style
func NewRenderer(style string, lineNumbers bool) *Renderer {
	return &Renderer{
		style:       style,
		lineNumbers: lineNumbers,
		gutter:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6A6A6A")),
		cache:       NewCache(32),
	}
}

// Render highlights one file. path only keys the cache.
func (r *Renderer) Render(path, content, extension string) string {
	key := r.cache.Key(path, extension, r.style, r.lineNumbers, content)
	if cached, ok := r.cache.Get(key); ok {
		return cached
	}

	out := Render(content, extension, r.style)
	if r.lineNumbers {
		out = r.addLineNumbers(out)
	}
	r.cache.Set(key, out)
	return out
}

func (r *Renderer) addLineNumbers(code string) string {
	lines := strings.Split(strings.TrimSuffix(code, "\n"), "\n")
	width := len(fmt.Sprintf("%d", len(lines)))

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.gutter.Render(fmt.Sprintf("%*d", width, i+1)))
		b.WriteString(" │ ")
		b.WriteString(line)
	}
	return b.String()
}
