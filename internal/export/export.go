// Package export combines the document state with the externally supplied
// role, rules and output instructions into one prompt.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/entrepeneur4lyf/taskpad/internal/document"
)

// Sources are the prompt sections that do not come from the document.
type Sources struct {
	Role   string
	Rules  string
	Output string
}

// ResolveSource returns value, or the contents of the file it names when it
// starts with "@". Relative file names resolve against baseDir.
func ResolveSource(value, baseDir string) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}

	path := strings.TrimPrefix(value, "@")
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt section %s: %w", path, err)
	}
	return string(data), nil
}

// Build renders the prompt. Sections with no content are left out.
func Build(src Sources, snap document.Snapshot) string {
	var sections []string

	add := func(title, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			return
		}
		sections = append(sections, "# "+title+"\n\n"+body)
	}

	add("Role", src.Role)
	add("Rules", src.Rules)
	add("Task", snap.Content)

	if len(snap.Files) > 0 {
		var b strings.Builder
		b.WriteString("# Files")
		for _, f := range snap.Files {
			b.WriteString("\n\n")
			writeFile(&b, f)
		}
		sections = append(sections, b.String())
	}

	add("Output", src.Output)

	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func writeFile(b *strings.Builder, f document.FileRecord) {
	fence := fenceFor(f.Content)
	fmt.Fprintf(b, "## %s\n\n%s%s\n%s", f.Path, fence, f.Extension, f.Content)
	if !strings.HasSuffix(f.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(fence)
}

// fenceFor returns a backtick fence longer than any backtick run in content.
func fenceFor(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

// Copy puts text on the system clipboard.
func Copy(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard is not available on this system")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
