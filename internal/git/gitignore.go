package git

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// loadPatternsFromGitignore loads patterns from a specific .gitignore file
func loadPatternsFromGitignore(gitignorePath string) ([]string, error) {
	file, err := os.Open(gitignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore: %w", err)
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// dir/ -> dir
		pattern := strings.TrimSuffix(line, "/")

		// Negation is not supported by a plain glob matcher
		if strings.HasPrefix(pattern, "!") {
			continue
		}

		patterns = append(patterns, strings.TrimPrefix(pattern, "/"))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading .gitignore: %w", err)
	}

	return patterns, nil
}

// PatternSet represents patterns from a single .gitignore file
type PatternSet struct {
	Directory string   // slash separated, relative to the walk root ("" for the root)
	Patterns  []string // Patterns from this .gitignore
}

// GitignoreStack represents a stack of .gitignore pattern sets
type GitignoreStack struct {
	stack []*PatternSet
}

// NewGitignoreStack creates a new empty gitignore stack
func NewGitignoreStack() *GitignoreStack {
	return &GitignoreStack{
		stack: make([]*PatternSet, 0),
	}
}

// Push adds a pattern set and reports whether it was pushed.
// Empty pattern sets are not pushed.
func (gs *GitignoreStack) Push(directory string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	gs.stack = append(gs.stack, &PatternSet{Directory: directory, Patterns: patterns})
	return true
}

// Pop removes the top pattern set from the stack
func (gs *GitignoreStack) Pop() {
	if len(gs.stack) > 0 {
		gs.stack = gs.stack[:len(gs.stack)-1]
	}
}

// Depth returns the current depth of the stack
func (gs *GitignoreStack) Depth() int {
	return len(gs.stack)
}

// ShouldExclude checks a file or directory against every pattern set.
// relativePath is slash separated and relative to the walk root; each
// pattern applies relative to the directory of its .gitignore.
func (gs *GitignoreStack) ShouldExclude(name, relativePath string) bool {
	for _, set := range gs.stack {
		local := relativePath
		if set.Directory != "" {
			prefix := set.Directory + "/"
			if !strings.HasPrefix(relativePath, prefix) {
				continue
			}
			local = strings.TrimPrefix(relativePath, prefix)
		}

		for _, pattern := range set.Patterns {
			if matched, err := doublestar.Match(pattern, local); err == nil && matched {
				return true
			}
			// Patterns without a slash match at any depth
			if !strings.Contains(pattern, "/") {
				if matched, err := doublestar.Match(pattern, name); err == nil && matched {
					return true
				}
			}
		}
	}
	return false
}

// StackBasedLoader pushes and pops .gitignore files while a directory walk
// descends and returns
type StackBasedLoader struct {
	logger   *slog.Logger
	stack    *GitignoreStack
	basePath string
	pushed   []bool
}

// NewStackBasedLoader creates a new stack-based gitignore loader
func NewStackBasedLoader(logger *slog.Logger) *StackBasedLoader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StackBasedLoader{
		logger: logger,
		stack:  NewGitignoreStack(),
	}
}

// InitializeWithTopLevelExcludes adds the configured excludes and
// .git/info/exclude as root level pattern sets
func (l *StackBasedLoader) InitializeWithTopLevelExcludes(basePath string, excludePatterns []string) {
	l.basePath = basePath

	if l.stack.Push("", excludePatterns) {
		l.logger.Info("Added top-level excludes", "base_path", basePath, "patterns", excludePatterns)
	}

	gitDir, err := findGitDir(basePath)
	if err != nil {
		return
	}
	patterns, err := loadGitInfoExclude(gitDir)
	if err != nil {
		l.logger.Warn("Failed to read .git/info/exclude", "path", gitDir, "error", err)
		return
	}
	if l.stack.Push("", patterns) {
		l.logger.Debug("Loaded .git/info/exclude patterns", "count", len(patterns))
	}
}

// Enter loads the .gitignore of a directory (relative to the base path) when present.
// Every Enter must be paired with a Leave.
func (l *StackBasedLoader) Enter(relativeDir string) {
	gitignorePath := filepath.Join(l.basePath, filepath.FromSlash(relativeDir), ".gitignore")

	patterns, err := loadPatternsFromGitignore(gitignorePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to read .gitignore file", "path", gitignorePath, "error", err)
		}
		l.pushed = append(l.pushed, false)
		return
	}

	dir := path.Clean(relativeDir)
	if dir == "." {
		dir = ""
	}
	pushed := l.stack.Push(dir, patterns)
	l.pushed = append(l.pushed, pushed)
	if pushed {
		l.logger.Debug("Loaded patterns from file", "path", gitignorePath, "count", len(patterns))
	}
}

// Leave drops what the matching Enter pushed
func (l *StackBasedLoader) Leave() {
	if len(l.pushed) == 0 {
		return
	}
	if l.pushed[len(l.pushed)-1] {
		l.stack.Pop()
	}
	l.pushed = l.pushed[:len(l.pushed)-1]
}

// ShouldExclude checks if a file/directory should be excluded based on current stack
func (l *StackBasedLoader) ShouldExclude(name, relativePath string) bool {
	return l.stack.ShouldExclude(name, relativePath)
}

// Stack returns the current gitignore stack
func (l *StackBasedLoader) Stack() *GitignoreStack {
	return l.stack
}

// loadGitInfoExclude loads patterns from .git/info/exclude
func loadGitInfoExclude(gitDir string) ([]string, error) {
	excludePath := filepath.Join(gitDir, "info", "exclude")

	if _, err := os.Stat(excludePath); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	return loadPatternsFromGitignore(excludePath)
}

// findGitDir finds the .git directory (handles submodules, worktrees, etc.)
func findGitDir(startPath string) (string, error) {
	// .git file of a worktree or submodule
	gitFile := filepath.Join(startPath, ".git")
	if content, err := os.ReadFile(gitFile); err == nil {
		gitDir := strings.TrimSpace(string(content))
		if strings.HasPrefix(gitDir, "gitdir: ") {
			return filepath.Join(startPath, strings.TrimPrefix(gitDir, "gitdir: ")), nil
		}
	}

	gitDir := filepath.Join(startPath, ".git")
	if stat, err := os.Stat(gitDir); err == nil && stat.IsDir() {
		return gitDir, nil
	}

	return "", fmt.Errorf("not a git repository")
}
