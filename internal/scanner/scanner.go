// Package scanner locates the files of a legacy Delphi project and groups
// them by role
package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-enry/go-enry/v2"
	"github.com/petrarca/delphi-migrator/internal/git"
	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/petrarca/delphi-migrator/internal/types"
)

// ignoredDirs are never descended into: VCS metadata and the IDE's
// local history and autosave folders
var ignoredDirs = map[string]bool{
	".git":       true,
	".svn":       true,
	"__history":  true,
	"__recovery": true,
}

// roleByExtension maps a lowercase file extension to its role tag
var roleByExtension = map[string]string{
	".pas":   parsers.RolePas,
	".dfm":   parsers.RoleDfm,
	".dpr":   parsers.RoleDpr,
	".dpk":   parsers.RoleDpk,
	".inc":   parsers.RoleInc,
	".dproj": parsers.RoleDproj,
}

// RoleOf returns the role tag of a file name
func RoleOf(name string) (string, bool) {
	role, ok := roleByExtension[strings.ToLower(filepath.Ext(name))]
	return role, ok
}

// NewFileSet returns a FileSet with every known role present and empty
func NewFileSet() types.FileSet {
	fs := make(types.FileSet, len(parsers.KnownRoles))
	for _, role := range parsers.KnownRoles {
		fs[role] = []string{}
	}
	return fs
}

// Scanner walks a legacy project directory
type Scanner struct {
	basePath        string
	excludePatterns []string
	progress        *progress.Progress
	gitignoreStack  *git.StackBasedLoader
	logger          *slog.Logger

	files int
	dirs  int
}

// NewScanner creates a scanner rooted at path. Exclude patterns are
// doublestar globs relative to the root; a pattern without a slash also
// matches a file or directory name at any depth.
func NewScanner(path string, excludePatterns []string, prog *progress.Progress, logger *slog.Logger) (*Scanner, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", path)
	}

	stack := git.NewStackBasedLoader(logger)
	stack.InitializeWithTopLevelExcludes(path, excludePatterns)

	return &Scanner{
		basePath:        path,
		excludePatterns: excludePatterns,
		progress:        prog,
		gitignoreStack:  stack,
		logger:          logger,
	}, nil
}

// Locate walks root and returns its Delphi files by role
func Locate(root string, excludePatterns []string, logger *slog.Logger) (types.FileSet, error) {
	s, err := NewScanner(root, excludePatterns, nil, logger)
	if err != nil {
		return nil, err
	}
	return s.Scan()
}

// Scan returns the files found under the base path, slash separated and
// relative to it, in walk order (lexical within a directory)
func (s *Scanner) Scan() (types.FileSet, error) {
	start := time.Now()
	s.files, s.dirs = 0, 0
	s.progress.LocateStart(s.basePath, s.excludePatterns)

	fileSet := NewFileSet()
	if err := s.recurse(fileSet, ""); err != nil {
		return nil, err
	}

	s.progress.LocateComplete(s.files, s.dirs, time.Since(start))
	s.logger.Info("Located legacy sources", "path", s.basePath, "files", fileSet.Count(), "dirs", s.dirs)
	return fileSet, nil
}

func (s *Scanner) recurse(fileSet types.FileSet, relDir string) error {
	display := relDir
	if display == "" {
		display = "."
	}
	s.progress.EnterDirectory(display)
	defer s.progress.LeaveDirectory(display)
	s.dirs++

	s.gitignoreStack.Enter(relDir)
	defer s.gitignoreStack.Leave()

	entries, err := os.ReadDir(filepath.Join(s.basePath, filepath.FromSlash(relDir)))
	if err != nil {
		if relDir == "" {
			return fmt.Errorf("failed to list project directory: %w", err)
		}
		s.logger.Warn("Failed to list directory", "path", relDir, "error", err)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		rel := path.Join(relDir, name)

		if entry.IsDir() {
			if reason, skip := s.shouldSkipDir(name, rel); skip {
				s.progress.Skipped(rel, reason)
				s.logger.Debug("Skipping directory", "path", rel, "reason", reason)
				continue
			}
			if err := s.recurse(fileSet, rel); err != nil {
				return err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}
		s.files++
		role, ok := RoleOf(name)
		if !ok {
			continue
		}
		if s.gitignoreStack.ShouldExclude(name, rel) {
			s.progress.Skipped(rel, "excluded")
			continue
		}
		fileSet[role] = append(fileSet[role], rel)
	}
	return nil
}

func (s *Scanner) shouldSkipDir(name, rel string) (string, bool) {
	if ignoredDirs[name] {
		return "ignored", true
	}
	if enry.IsVendor(rel + "/") {
		return "vendored", true
	}
	if s.gitignoreStack.ShouldExclude(name, rel) {
		return "excluded", true
	}
	return "", false
}
