// Package workspace owns the temporary directories of a migration run and
// the Java project skeleton.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/petrarca/delphi-migrator/internal/types"
)

// TempPrefix prefixes every temporary directory
const TempPrefix = "delphi-migrator-"

// packageDirs are the role directories below the package root
var packageDirs = []string{"controller", "service", "repository", "model", "config"}

// Workspace tracks temporary directories until Cleanup
type Workspace struct {
	logger  *slog.Logger
	tracker *tracker
	cleanup runtime.Cleanup
}

type tracker struct {
	mu     sync.Mutex
	dirs   []string
	logger *slog.Logger
}

// New creates a workspace. Cleanup should be called when done; directories
// left behind are also removed on a best-effort basis once the workspace is
// garbage collected.
func New(logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Workspace{
		logger:  logger,
		tracker: &tracker{logger: logger},
	}
	w.cleanup = runtime.AddCleanup(w, func(t *tracker) { t.removeAll() }, w.tracker)
	return w
}

// TempDir creates and tracks a new temporary directory
func (w *Workspace) TempDir(prefix string) (string, error) {
	dir, err := os.MkdirTemp("", TempPrefix+prefix)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	w.Track(dir)
	return dir, nil
}

// Track registers dir for removal by Cleanup
func (w *Workspace) Track(dir string) {
	w.tracker.mu.Lock()
	defer w.tracker.mu.Unlock()
	w.tracker.dirs = append(w.tracker.dirs, dir)
}

// Dirs returns the tracked directories
func (w *Workspace) Dirs() []string {
	w.tracker.mu.Lock()
	defer w.tracker.mu.Unlock()
	return append([]string{}, w.tracker.dirs...)
}

// Cleanup removes every tracked directory. Failures are logged, never
// returned.
func (w *Workspace) Cleanup() {
	w.tracker.removeAll()
}

// Close cleans up and detaches the finalizer
func (w *Workspace) Close() error {
	w.cleanup.Stop()
	w.Cleanup()
	return nil
}

func (t *tracker) removeAll() {
	t.mu.Lock()
	dirs := t.dirs
	t.dirs = nil
	t.mu.Unlock()

	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			t.logger.Warn("failed to remove temporary directory", "dir", dir, "error", err)
			continue
		}
		t.logger.Debug("temporary directory removed", "dir", dir)
	}
}

// CreateJavaSkeleton creates the standard Spring Boot directory tree for
// packageName below base
func CreateJavaSkeleton(base, packageName string) (types.ProjectLayout, error) {
	if packageName == "" {
		packageName = types.DefaultPackageName
	}
	packagePath := filepath.Join(strings.Split(packageName, ".")...)

	layout := types.ProjectLayout{
		Base:             base,
		SrcMainJava:      filepath.Join(base, "src", "main", "java", packagePath),
		SrcMainResources: filepath.Join(base, "src", "main", "resources"),
		PackageName:      packageName,
		Dirs:             make(map[string]string),
	}

	for _, name := range packageDirs {
		layout.Dirs[name] = filepath.Join(layout.SrcMainJava, name)
	}
	layout.Dirs["resources"] = layout.SrcMainResources
	layout.Dirs["static"] = filepath.Join(layout.SrcMainResources, "static")
	layout.Dirs["templates"] = filepath.Join(layout.SrcMainResources, "templates")
	layout.Dirs["test"] = filepath.Join(base, "src", "test", "java", packagePath)

	dirs := []string{layout.SrcMainJava}
	for _, dir := range layout.Dirs {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return types.ProjectLayout{}, fmt.Errorf("failed to create java project structure: %w", err)
		}
	}
	return layout, nil
}
