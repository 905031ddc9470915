// Package builder materializes a generated code bundle into a Maven Spring
// Boot project.
//
// Unlike analysis, materialization is all or nothing: every file is prepared
// before anything is written and the first failure aborts the build with a
// BuildError naming the stage.
package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/petrarca/delphi-migrator/internal/config"
	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/petrarca/delphi-migrator/internal/templates"
	"github.com/petrarca/delphi-migrator/internal/types"
)

// Well-known project files
const (
	DescriptorName = "pom.xml"
	ConfigName     = "application.properties"
	ConfigPath     = "src/main/resources/" + ConfigName
)

const (
	fileMode   fs.FileMode = 0o644
	scriptMode fs.FileMode = 0o755
)

// scaffoldFiles are generated when the bundle does not carry them
var scaffoldFiles = []struct {
	path     string
	template string
	mode     fs.FileMode
}{
	{DescriptorName, templates.Pom, fileMode},
	{ConfigPath, templates.ApplicationProperties, fileMode},
	{"README.md", templates.Readme, fileMode},
	{".gitignore", templates.GitIgnore, fileMode},
	{"validate.sh", templates.ValidateSh, scriptMode},
	{"validate.bat", templates.ValidateBat, fileMode},
}

// Options configures a Builder
type Options struct {
	Logger   *slog.Logger
	Progress *progress.Progress

	// Versions written into generated descriptors, defaults 3.2.0 and 17
	SpringBootVersion string
	JavaVersion       string
}

// Builder turns bundles into project directories
type Builder struct {
	logger     *slog.Logger
	progress   *progress.Progress
	renderer   *templates.Renderer
	maven      *parsers.MavenParser
	springBoot string
	java       string

	mu       sync.Mutex
	manifest types.Manifest
}

type plannedFile struct {
	path    string
	content []byte
	mode    fs.FileMode
}

// New creates a builder
func New(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	springBoot := opts.SpringBootVersion
	if springBoot == "" {
		springBoot = config.DefaultSpringBootVersion
	}
	java := opts.JavaVersion
	if java == "" {
		java = config.DefaultJavaVersion
	}

	return &Builder{
		logger:     logger,
		progress:   opts.Progress,
		renderer:   templates.NewRenderer(),
		maven:      parsers.NewMavenParser(),
		springBoot: springBoot,
		java:       java,
		manifest:   types.Manifest{Files: []string{}, Structure: map[string]string{}},
	}
}

// Build writes the bundle below layout.Base and returns the manifest of
// written files
func (b *Builder) Build(bundle types.GeneratedCodeBundle, layout types.ProjectLayout) (types.Manifest, error) {
	if layout.Base == "" {
		return types.Manifest{}, stageError(StageWrite, "", errors.New("layout has no base directory"))
	}

	start := time.Now()
	bundle = bundle.WithDefaults()
	data := templates.Data{
		ProjectName:       bundle.ProjectName,
		PackageName:       bundle.PackageName,
		SpringBootVersion: b.springBoot,
		JavaVersion:       b.java,
	}

	b.logger.Info("building java project", "base", layout.Base, "files", len(bundle.Files), "package", bundle.PackageName)

	planned, err := b.plan(bundle, data)
	if err != nil {
		b.logger.Error("java project build failed", "error", err)
		return types.Manifest{}, err
	}

	unlock := destinations.acquire(layout.Base)
	defer unlock()

	b.progress.BuildStart(layout.Base, len(planned))
	written := make([]string, 0, len(planned))
	for _, file := range planned {
		if err := b.write(layout.Base, file); err != nil {
			b.logger.Error("java project build failed", "error", err)
			return types.Manifest{}, err
		}
		written = append(written, file.path)
	}
	b.progress.BuildComplete(layout.Base, len(written), time.Since(start))

	manifest := types.Manifest{
		TotalFiles: len(written),
		Files:      written,
		Structure:  layout.Structure(),
	}
	b.mu.Lock()
	b.manifest = manifest
	b.mu.Unlock()

	b.logger.Info("java project built", "base", layout.Base, "files", len(written), "duration", time.Since(start))
	return b.Summary(), nil
}

// Summary returns the manifest of the last successful build
func (b *Builder) Summary() types.Manifest {
	b.mu.Lock()
	defer b.mu.Unlock()

	structure := make(map[string]string, len(b.manifest.Structure))
	for k, v := range b.manifest.Structure {
		structure[k] = v
	}
	return types.Manifest{
		TotalFiles: b.manifest.TotalFiles,
		Files:      append([]string{}, b.manifest.Files...),
		Structure:  structure,
	}
}

// plan prepares every bundle file and the missing scaffold files
func (b *Builder) plan(bundle types.GeneratedCodeBundle, data templates.Data) ([]plannedFile, error) {
	planned := make([]plannedFile, 0, len(bundle.Files)+len(scaffoldFiles))
	index := make(map[string]int)

	add := func(file plannedFile) {
		if i, ok := index[file.path]; ok {
			b.logger.Warn("bundle path repeated, last content wins", "path", file.path)
			planned[i] = file
			return
		}
		index[file.path] = len(planned)
		planned = append(planned, file)
	}

	for _, file := range bundle.Files {
		prepared, err := b.prepare(file, bundle.PackageName, data)
		if err != nil {
			return nil, err
		}
		add(prepared)
	}

	for _, scaffold := range scaffoldFiles {
		if _, ok := index[scaffold.path]; ok {
			continue
		}
		content, err := b.renderer.Render(scaffold.template, data)
		if err != nil {
			return nil, stageError(StageScaffoldFiles, scaffold.path, err)
		}
		b.logger.Debug("generating default file", "path", scaffold.path)
		add(plannedFile{path: scaffold.path, content: content, mode: scaffold.mode})
	}

	return planned, nil
}

// prepare normalizes one bundle file and applies the Java, descriptor and
// configuration fixes
func (b *Builder) prepare(file types.BundleFile, packageName string, data templates.Data) (plannedFile, error) {
	rel, err := cleanRelativePath(file.Path)
	if err != nil {
		return plannedFile{}, stageError(StageNormalize, file.Path, err)
	}

	var content string
	if err := guard(StageNormalize, rel, func() error {
		content = file.Content.Normalize()
		return nil
	}); err != nil {
		return plannedFile{}, err
	}

	name := path.Base(rel)
	mode := fileMode
	if name == "validate.sh" {
		mode = scriptMode
	}

	if strings.HasSuffix(rel, ".java") {
		if err := guard(StagePackage, rel, func() error {
			if HasPackage(content) {
				return nil
			}
			pkg := InferPackage(rel, packageName)
			if !config.IsValidPackageName(pkg) {
				b.logger.Warn("inferred package is not a valid Java name", "path", rel, "package", pkg)
				b.progress.Warning(rel, fmt.Sprintf("package %s is not a valid Java name", pkg))
			}
			content = EnsurePackage(content, pkg)
			return nil
		}); err != nil {
			return plannedFile{}, err
		}

		if err := guard(StageImports, rel, func() error {
			if role, ok := RoleOf(rel); ok {
				content = InjectImports(content, role.Imports)
			}
			return nil
		}); err != nil {
			return plannedFile{}, err
		}
	}

	switch name {
	case DescriptorName:
		if err := guard(StageDescriptor, rel, func() error {
			var err error
			content, err = b.descriptor(rel, content, data)
			return err
		}); err != nil {
			return plannedFile{}, err
		}
	case ConfigName:
		if err := guard(StageConfig, rel, func() error {
			if strings.TrimSpace(content) != "" && strings.Contains(content, "spring.") {
				return nil
			}
			b.logger.Info("replacing application configuration with defaults", "path", rel)
			rendered, err := b.renderer.Render(templates.ApplicationProperties, data)
			if err != nil {
				return err
			}
			content = string(rendered)
			return nil
		}); err != nil {
			return plannedFile{}, err
		}
	}

	return plannedFile{path: rel, content: []byte(content), mode: mode}, nil
}

// descriptor keeps a real pom.xml, reporting missing starters, and replaces
// anything else with the default one
func (b *Builder) descriptor(rel, content string, data templates.Data) (string, error) {
	if !b.maven.LooksLikeDescriptor(content) {
		b.logger.Info("replacing build descriptor with defaults", "path", rel)
		rendered, err := b.renderer.Render(templates.Pom, data)
		if err != nil {
			return "", err
		}
		return string(rendered), nil
	}

	project, err := b.maven.ParsePom(content)
	if err != nil {
		b.logger.Warn("build descriptor kept as is", "path", rel, "error", err)
		b.progress.Warning(rel, err.Error())
		return content, nil
	}
	for _, starter := range b.maven.MissingStarters(project) {
		b.logger.Warn("build descriptor lacks an essential dependency", "path", rel, "dependency", starter)
		b.progress.Warning(rel, "missing dependency "+starter)
	}
	return content, nil
}

func (b *Builder) write(base string, file plannedFile) error {
	full := filepath.Join(base, filepath.FromSlash(file.path))
	b.progress.FileWriting(file.path)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return stageError(StageWrite, file.path, fmt.Errorf("cannot create directory: %w", err))
	}
	if err := os.WriteFile(full, file.content, file.mode); err != nil {
		return stageError(StageWrite, file.path, err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(full, file.mode); err != nil {
		return stageError(StageWrite, file.path, err)
	}

	b.logger.Debug("file written", "path", file.path, "bytes", len(file.content))
	b.progress.FileWritten(file.path)
	return nil
}

// cleanRelativePath turns a bundle key into a slash path inside the project
func cleanRelativePath(p string) (string, error) {
	rel := path.Clean(strings.ReplaceAll(p, `\`, "/"))
	switch {
	case strings.TrimSpace(p) == "" || rel == ".":
		return "", errors.New("empty file path")
	case path.IsAbs(rel), len(rel) >= 2 && rel[1] == ':':
		return "", errors.New("absolute file path")
	case rel == "..", strings.HasPrefix(rel, "../"):
		return "", errors.New("file path escapes the project directory")
	}
	return rel, nil
}

// guard runs one preparation step, turning errors and panics into a
// BuildError for stage
func guard(stage Stage, rel string, step func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = stageError(stage, rel, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := step(); err != nil {
		return stageError(stage, rel, err)
	}
	return nil
}
