package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrarca/delphi-migrator/internal/analyzer"
	"github.com/petrarca/delphi-migrator/internal/codestats"
	"github.com/petrarca/delphi-migrator/internal/config"
	"github.com/petrarca/delphi-migrator/internal/metadata"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/petrarca/delphi-migrator/internal/provider"
	"github.com/petrarca/delphi-migrator/internal/rules"
	"github.com/petrarca/delphi-migrator/internal/scanner"
	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/petrarca/delphi-migrator/internal/workspace"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path|archive.zip]",
	Short: "Analyze a Delphi project and print its structural model",
	Long: `Analyze walks a Delphi project directory (or a zip archive of one), parses
units, forms, programs and .dproj files and prints the resulting model:
classes, methods, SQL queries, event handlers, database components, form
components and the detected data access technologies.

Examples:
  delphi-migrator analyze ./legacy
  delphi-migrator analyze legacy.zip --format yaml
  delphi-migrator analyze ./legacy --exclude "Tests/**" -o model.json
  delphi-migrator analyze ./legacy --rules ./my-rules --no-code-stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	setupOutputFlags(analyzeCmd, &settings.Format, &settings.OutputFile)
	analyzeCmd.Flags().BoolVar(&settings.PrettyPrint, "pretty", settings.PrettyPrint, "Pretty print JSON output")
	analyzeCmd.Flags().StringSliceVar(&settings.ExcludePatterns, "exclude", settings.ExcludePatterns, "Patterns to exclude (glob patterns, can be specified multiple times)")
	analyzeCmd.Flags().BoolVar(&settings.NoCodeStats, "no-code-stats", settings.NoCodeStats, "Disable code statistics")
	analyzeCmd.Flags().StringVar(&settings.RulesDir, "rules", settings.RulesDir, "Directory with additional technology rules (YAML)")
}

// analyzeOptions are the inputs of one analysis
type analyzeOptions struct {
	Excludes  []string
	RulesDir  string
	CodeStats bool
	Progress  *progress.Progress
}

// analyzeResult is the output of the analyze command
type analyzeResult struct {
	Model *types.ProjectModel
}

func (r *analyzeResult) ToJSON() interface{} {
	return r.Model
}

func (r *analyzeResult) ToText(w io.Writer) {
	m := r.Model
	if project := m.Project(); project != nil {
		fmt.Fprintf(w, "Project: %s (main form %s)\n", project.ProjectName, project.MainFormName)
	}
	if m.Summary.Framework != "" {
		fmt.Fprintf(w, "Framework: %s\n", m.Summary.Framework)
	}
	fmt.Fprintf(w, "Units: %d, forms: %d, data modules: %d\n",
		m.Summary.TotalUnits, m.Summary.TotalForms, m.Summary.TotalDataModules)
	fmt.Fprintf(w, "Database: %t\n", m.Summary.HasDatabase)
	if len(m.Summary.MainTechnologies) > 0 {
		fmt.Fprintf(w, "Technologies: %s\n", strings.Join(m.Summary.MainTechnologies, ", "))
	}

	fmt.Fprintln(w)
	for name, unit := range m.Units.All() {
		if name == types.ProjectUnitKey {
			continue
		}
		kind := "unit"
		if _, ok := m.DataModules.Get(name); ok {
			kind = "datamodule"
		} else if _, ok := m.Forms.Get(name); ok {
			kind = "form"
		}
		fmt.Fprintf(w, "%s (%s) %s\n", name, kind, unit.SourcePath)
		for _, class := range unit.Classes {
			fmt.Fprintf(w, "  class %s(%s): %d methods\n", class.Name, class.Parent, len(class.Methods))
		}
		if len(unit.SQLQueries) > 0 {
			fmt.Fprintf(w, "  sql: %d queries\n", len(unit.SQLQueries))
		}
		if len(unit.EventHandlers) > 0 {
			fmt.Fprintf(w, "  event handlers: %d\n", len(unit.EventHandlers))
		}
		if unit.FormInfo != nil {
			fmt.Fprintf(w, "  form %s: %d components\n", unit.FormInfo.Name, len(unit.FormInfo.Components))
		}
	}

	if len(m.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range m.Warnings {
			fmt.Fprintf(w, "  %s: %s\n", warning.Path, warning.Message)
		}
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, err := configureLogging(cmd)
	if err != nil {
		return err
	}

	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	ws := workspace.New(logger)
	defer ws.Close()

	root, err := resolveProjectRoot(path, ws)
	if err != nil {
		return err
	}

	projectConfig, err := config.LoadProjectConfig(root)
	if err != nil {
		return err
	}

	rulesDir := settings.RulesDir
	if rulesDir == "" && projectConfig.RulesDir != "" {
		rulesDir = filepath.Join(root, projectConfig.RulesDir)
	}

	fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
	model, err := analyzeProject(root, analyzeOptions{
		Excludes:  projectConfig.MergeExcludes(settings.ExcludePatterns),
		RulesDir:  rulesDir,
		CodeStats: !settings.NoCodeStats,
		Progress:  progress.WriterFor(settings.Verbose, os.Stderr),
	}, logger)
	if err != nil {
		return err
	}
	model.Metadata.SourcePath = path

	return OutputToFile(&analyzeResult{Model: model}, settings.Format, settings.OutputFile)
}

// resolveProjectRoot returns the directory to analyze, extracting archives
// into the workspace
func resolveProjectRoot(path string, ws *workspace.Workspace) (string, error) {
	absPath, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}
	if info.IsDir() {
		return absPath, nil
	}
	if !strings.EqualFold(filepath.Ext(absPath), ".zip") {
		return "", fmt.Errorf("not a directory or zip archive: %s", absPath)
	}
	return ws.ExtractZip(absPath)
}

// loadRules returns the embedded technology rules merged with those of dir
func loadRules(dir string) ([]rules.TechnologyRule, error) {
	techRules, err := rules.LoadEmbeddedRules()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return techRules, nil
	}
	extra, err := rules.LoadExternalRules(dir)
	if err != nil {
		return nil, err
	}
	return rules.Merge(techRules, extra), nil
}

// analyzeProject locates and analyzes the Delphi sources below root
func analyzeProject(root string, opts analyzeOptions, logger *slog.Logger) (*types.ProjectModel, error) {
	start := time.Now()

	techRules, err := loadRules(opts.RulesDir)
	if err != nil {
		return nil, err
	}

	s, err := scanner.NewScanner(root, opts.Excludes, opts.Progress, logger)
	if err != nil {
		return nil, err
	}
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}

	model, err := analyzer.Analyze(files, provider.NewFSProvider(root), analyzer.Options{
		Logger:         logger,
		Progress:       opts.Progress,
		Rules:          techRules,
		CodeStats:      codestats.NewAnalyzer(opts.CodeStats),
		DetectLicenses: true,
		DetectGit:      true,
	})
	if err != nil {
		return nil, err
	}

	roleCounts := make(map[string]int, len(files))
	for role, paths := range files {
		roleCounts[role] = len(paths)
	}
	meta := metadata.NewAnalysisMetadata(root)
	meta.SetFileCounts(roleCounts)
	meta.SetDuration(time.Since(start))
	properties := map[string]interface{}{"code_stats": opts.CodeStats}
	if len(opts.Excludes) > 0 {
		properties["excludes"] = opts.Excludes
	}
	if opts.RulesDir != "" {
		properties["rules_dir"] = opts.RulesDir
	}
	meta.SetProperties(properties)
	model.Metadata = meta

	return model, nil
}
