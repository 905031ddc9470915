package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petrarca/delphi-migrator/internal/builder"
	"github.com/petrarca/delphi-migrator/internal/bundle"
	"github.com/petrarca/delphi-migrator/internal/config"
	"github.com/petrarca/delphi-migrator/internal/git"
	"github.com/petrarca/delphi-migrator/internal/output"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/petrarca/delphi-migrator/internal/workspace"
)

var (
	buildOut        string
	buildZip        string
	buildGitInit    bool
	buildForce      bool
	buildConfigFile string
)

var buildCmd = &cobra.Command{
	Use:   "build <bundle.json|bundle.yaml>",
	Short: "Materialize a generated code bundle into a Spring Boot project",
	Long: `Build writes the files of a generated code bundle into a Maven Spring Boot
project: package declarations and Spring imports are added to Java sources,
an empty or invalid pom.xml or application.properties is replaced with a
default one, and README.md, .gitignore and the validation scripts are added.

The project is built in a temporary directory next to the destination and
moved into place only when every file was written.

Examples:
  delphi-migrator build bundle.json --out ./sales-service
  delphi-migrator build bundle.yaml --out ./sales-service --force --zip sales-service.zip
  delphi-migrator build bundle.json --out ./sales-service --git-init`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	setupFormatFlag(buildCmd, &settings.Format)
	buildCmd.Flags().StringVar(&buildOut, "out", "", "Destination directory (required)")
	buildCmd.Flags().StringVar(&buildZip, "zip", "", "Also package the project into this zip file")
	buildCmd.Flags().BoolVar(&buildGitInit, "git-init", false, "Initialize a git repository with an initial commit")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "Replace an existing non-empty destination")
	buildCmd.Flags().StringVar(&buildConfigFile, "config", "", "Project configuration file ("+config.ProjectConfigFile+")")
	buildCmd.Flags().StringVar(&settings.PackageName, "package", settings.PackageName, "Package name used when the bundle has none")
	buildCmd.Flags().StringVar(&settings.ProjectName, "project", settings.ProjectName, "Project name used when the bundle has none")
	_ = buildCmd.MarkFlagRequired("out")
}

// buildOptions are the inputs of one materialization
type buildOptions struct {
	Dest        string
	Force       bool
	ZipPath     string
	GitInit     bool
	PackageName string
	ProjectName string
	Config      *config.ProjectConfig
	Progress    *progress.Progress
}

// buildResult is the output of the build command
type buildResult struct {
	Manifest types.Manifest `json:"manifest" yaml:"manifest"`
	Zip      string         `json:"zip,omitempty" yaml:"zip,omitempty"`
	Commit   string         `json:"commit,omitempty" yaml:"commit,omitempty"`
}

func (r *buildResult) ToJSON() interface{} {
	return r
}

func (r *buildResult) ToText(w io.Writer) {
	fmt.Fprintf(w, "Project: %s\n", r.Manifest.Structure["base"])
	for _, file := range r.Manifest.Files {
		fmt.Fprintf(w, "  %s\n", file)
	}
	fmt.Fprintf(w, "Total: %d files\n", r.Manifest.TotalFiles)
	if r.Zip != "" {
		fmt.Fprintf(w, "Archive: %s\n", r.Zip)
	}
	if r.Commit != "" {
		fmt.Fprintf(w, "Commit: %s\n", r.Commit)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	logger, err := configureLogging(cmd)
	if err != nil {
		return err
	}

	projectConfig := &config.ProjectConfig{}
	if buildConfigFile != "" {
		data, err := os.ReadFile(buildConfigFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", buildConfigFile, err)
		}
		if projectConfig, err = config.ParseProjectConfig(data); err != nil {
			return err
		}
	}

	b, err := bundle.Load(args[0])
	if err != nil {
		return err
	}

	printer := output.Stderr()
	printer.SetVerbose(settings.Verbose)
	printer.Info(fmt.Sprintf("Building %d files into %s", len(b.Files), buildOut))

	result, err := buildProject(b, buildOptions{
		Dest:        buildOut,
		Force:       buildForce,
		ZipPath:     buildZip,
		GitInit:     buildGitInit,
		PackageName: settings.PackageName,
		ProjectName: settings.ProjectName,
		Config:      projectConfig,
		Progress:    progress.WriterFor(settings.Verbose, os.Stderr),
	}, logger)
	if err != nil {
		return err
	}

	printer.Success(fmt.Sprintf("Project written to %s", result.Manifest.Structure["base"]))
	printer.Step("cd " + buildOut)
	printer.Step("mvn spring-boot:run")
	return OutputToFile(result, settings.Format, "")
}

// buildProject materializes b into opts.Dest through a staging directory
func buildProject(b types.GeneratedCodeBundle, opts buildOptions, logger *slog.Logger) (*buildResult, error) {
	if opts.Config == nil {
		opts.Config = &config.ProjectConfig{}
	}
	dest, err := filepath.Abs(opts.Dest)
	if err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}
	if err := checkDestination(dest, opts.Force); err != nil {
		return nil, err
	}

	if b.PackageName == "" {
		b.PackageName = firstNonEmpty(opts.PackageName, opts.Config.PackageName)
	}
	if b.ProjectName == "" {
		b.ProjectName = firstNonEmpty(opts.ProjectName, opts.Config.ProjectName)
	}
	b = b.WithDefaults()

	ws := workspace.New(logger)
	defer ws.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create destination parent: %w", err)
	}
	staging, err := os.MkdirTemp(filepath.Dir(dest), "."+workspace.TempPrefix+"build-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	ws.Track(staging)

	layout, err := workspace.CreateJavaSkeleton(staging, b.PackageName)
	if err != nil {
		return nil, err
	}

	javaBuilder := builder.New(builder.Options{
		Logger:            logger,
		Progress:          opts.Progress,
		SpringBootVersion: opts.Config.SpringBoot(),
		JavaVersion:       opts.Config.Java(),
	})
	manifest, err := javaBuilder.Build(b, layout)
	if err != nil {
		return nil, err
	}

	if err := promote(staging, dest); err != nil {
		return nil, err
	}
	manifest.Structure = rebase(manifest.Structure, staging, dest)
	logger.Info("project promoted", "dest", dest)

	result := &buildResult{Manifest: manifest}
	if opts.GitInit {
		commit, err := git.InitRepository(dest, "Initial commit of the migrated project", git.CommitAuthor{
			Name:  "delphi-migrator",
			Email: "delphi-migrator@localhost",
		})
		if err != nil {
			return nil, err
		}
		result.Commit = commit
	}
	if opts.ZipPath != "" {
		if err := workspace.CreateZip(dest, opts.ZipPath); err != nil {
			return nil, err
		}
		result.Zip = opts.ZipPath
	}
	return result, nil
}

// checkDestination refuses to replace a non-empty directory unless forced
func checkDestination(dest string, force bool) error {
	entries, err := os.ReadDir(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("destination %s is not a directory: %w", dest, err)
	}
	if len(entries) > 0 && !force {
		return fmt.Errorf("destination %s is not empty (use --force to replace it)", dest)
	}
	return nil
}

// promote moves the staging directory to dest. An existing dest is moved
// aside first and only removed once staging is in place.
func promote(staging, dest string) error {
	backup := ""
	if _, err := os.Lstat(dest); err == nil {
		backup = filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".old-"+filepath.Base(staging))
		if err := os.Rename(dest, backup); err != nil {
			return fmt.Errorf("failed to move %s aside: %w", dest, err)
		}
	}

	if err := os.Rename(staging, dest); err != nil {
		if backup != "" {
			if restoreErr := os.Rename(backup, dest); restoreErr != nil {
				return fmt.Errorf("failed to move project into %s: %w (previous content left in %s)", dest, err, backup)
			}
		}
		return fmt.Errorf("failed to move project into %s: %w", dest, err)
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("failed to remove previous %s: %w", dest, err)
		}
	}
	return nil
}

// rebase rewrites structure paths from the staging directory to dest
func rebase(structure map[string]string, staging, dest string) map[string]string {
	rebased := make(map[string]string, len(structure))
	for key, value := range structure {
		if value == staging || strings.HasPrefix(value, staging+string(filepath.Separator)) {
			value = dest + strings.TrimPrefix(value, staging)
		}
		rebased[key] = value
	}
	return rebased
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// sortedKeys returns the keys of m in order
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
