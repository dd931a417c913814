package ingest

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// GitIgnoreFilter provides gitignore-aware file filtering
type GitIgnoreFilter struct {
	ignore      *gitignore.GitIgnore
	projectRoot string
}

// NewGitIgnoreFilter creates a new gitignore filter for the given project root
func NewGitIgnoreFilter(projectRoot string) *GitIgnoreFilter {
	filter := &GitIgnoreFilter{projectRoot: projectRoot}
	filter.loadGitIgnorePatterns()
	return filter
}

// loadGitIgnorePatterns loads patterns from .gitignore, then .git/info/exclude,
// then falls back to common defaults. .git/ is always ignored.
func (g *GitIgnoreFilter) loadGitIgnorePatterns() {
	always := []string{".git/", ".taskpad/"}

	for _, candidate := range []string{
		filepath.Join(g.projectRoot, ".gitignore"),
		filepath.Join(g.projectRoot, ".git", "info", "exclude"),
	} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if compiled, err := gitignore.CompileIgnoreFileAndLines(candidate, always...); err == nil {
			g.ignore = compiled
			return
		}
	}

	g.ignore = gitignore.CompileIgnoreLines(append(always, getDefaultIgnorePatterns()...)...)
}

// IsIgnored checks if a path should be ignored
func (g *GitIgnoreFilter) IsIgnored(path string) bool {
	if g == nil || g.ignore == nil {
		return false
	}

	relPath, err := filepath.Rel(g.projectRoot, path)
	if err != nil {
		relPath = path
	}
	return g.ignore.MatchesPath(filepath.ToSlash(relPath))
}

// IsIgnoredDir checks a directory, so that "dir/" patterns prune the walk
// before descending into it.
func (g *GitIgnoreFilter) IsIgnoredDir(path string) bool {
	if g == nil || g.ignore == nil {
		return false
	}

	relPath, err := filepath.Rel(g.projectRoot, path)
	if err != nil {
		relPath = path
	}
	relPath = filepath.ToSlash(relPath)
	return g.ignore.MatchesPath(relPath) || g.ignore.MatchesPath(relPath+"/")
}

// getDefaultIgnorePatterns returns common ignore patterns when no .gitignore is found
func getDefaultIgnorePatterns() []string {
	return []string{
		// Version control
		".svn/",
		".hg/",

		// Dependencies
		"node_modules/",
		"vendor/",
		"target/",

		// IDE files
		".vscode/",
		".idea/",
		"*.swp",
		"*~",

		// Build outputs
		"build/",
		"dist/",
		"out/",
		"bin/",

		// Compiled artifacts
		"__pycache__/",
		"*.pyc",
		"*.class",
		"*.jar",
		"*.exe",
		"*.dll",
		"*.so",
		"*.dylib",

		// Logs and temporary files
		"*.log",
		"*.tmp",
		".DS_Store",

		// Environment files
		".env",
		".env.*",
	}
}
