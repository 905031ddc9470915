// Package analyzer turns a role-classified set of Delphi files into a
// ProjectModel.
//
// Analysis is best effort: a file that cannot be read or parsed becomes a
// ParseWarning and the remaining files are still analyzed. Only an unusable
// file set aborts the run.
package analyzer

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petrarca/delphi-migrator/internal/aggregator"
	"github.com/petrarca/delphi-migrator/internal/codestats"
	"github.com/petrarca/delphi-migrator/internal/git"
	"github.com/petrarca/delphi-migrator/internal/license"
	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/petrarca/delphi-migrator/internal/rules"
	"github.com/petrarca/delphi-migrator/internal/types"
)

// ErrInvalidFileSet is returned when the file set is nil or carries a role
// tag the analyzer does not know
var ErrInvalidFileSet = errors.New("invalid file set")

// Unit classifications reported in progress events
const (
	kindDataModule = "datamodule"
	kindForm       = "form"
	kindUnit       = "unit"
)

// Options configures an analysis run. The zero value analyzes with the
// embedded technology rules and no enrichments.
type Options struct {
	Logger   *slog.Logger
	Progress *progress.Progress

	// Rules replaces the embedded technology rules when non-nil
	Rules []rules.TechnologyRule

	// CodeStats receives every file that was read, when set
	CodeStats codestats.Analyzer

	// DetectLicenses and DetectGit inspect the provider's base path
	DetectLicenses bool
	DetectGit      bool

	// Workers bounds parallel reads of unit files (default GOMAXPROCS)
	Workers int
}

// Analyzer parses Delphi sources read through a provider
type Analyzer struct {
	provider types.Provider
	logger   *slog.Logger
	progress *progress.Progress
	opts     Options

	rules   []rules.TechnologyRule
	pascal  *parsers.PascalParser
	forms   *parsers.FormParser
	program *parsers.ProgramParser
	dproj   *parsers.DelphiParser
}

// New creates an analyzer reading files through provider
func New(provider types.Provider, opts Options) (*Analyzer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	techRules := opts.Rules
	if techRules == nil {
		var err error
		techRules, err = rules.LoadEmbeddedRules()
		if err != nil {
			return nil, fmt.Errorf("failed to load technology rules: %w", err)
		}
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	return &Analyzer{
		provider: provider,
		logger:   logger,
		progress: opts.Progress,
		opts:     opts,
		rules:    techRules,
		pascal:   parsers.NewPascalParser(),
		forms:    parsers.NewFormParser(),
		program:  parsers.NewProgramParser(),
		dproj:    parsers.NewDelphiParser(),
	}, nil
}

// Analyze is a convenience wrapper around New and Analyzer.Analyze
func Analyze(files types.FileSet, provider types.Provider, opts Options) (*types.ProjectModel, error) {
	a, err := New(provider, opts)
	if err != nil {
		return nil, fmt.Errorf("delphi analysis failed: %w", err)
	}
	return a.Analyze(files)
}

// Analyze parses every file of the set and returns a fresh model. Files are
// processed role by role (pas, dfm, dpr, dproj) in the order given; dpk and
// inc files are accepted but not parsed.
func (a *Analyzer) Analyze(files types.FileSet) (*types.ProjectModel, error) {
	if err := validateFileSet(files); err != nil {
		a.logger.Error("Delphi analysis failed", "stage", "validate", "error", err)
		return nil, fmt.Errorf("delphi analysis failed: %w", err)
	}

	start := time.Now()
	a.logger.Info("Starting Delphi analysis", "files", files.Count())
	a.progress.AnalysisStart(files.Count())

	run := &analysisRun{Analyzer: a, model: types.NewProjectModel()}

	run.parseUnits(files[parsers.RolePas])
	run.parseForms(files[parsers.RoleDfm])
	run.parsePrograms(files[parsers.RoleDpr])
	run.parseProjectFiles(files[parsers.RoleDproj])
	run.acceptOnly(parsers.RoleDpk, files[parsers.RoleDpk])
	run.acceptOnly(parsers.RoleInc, files[parsers.RoleInc])

	model := run.model
	model.Summary = aggregator.NewAggregator(a.rules).Summarize(model)
	for _, tech := range model.Summary.MainTechnologies {
		a.progress.TechDetected(tech, fmt.Sprintf("uses %v", model.Summary.Reasons[tech]))
	}

	a.enrich(model)

	a.progress.AnalysisComplete(model.Summary.TotalUnits, model.Summary.TotalForms, model.Summary.TotalDataModules, time.Since(start))
	a.logger.Info("Delphi analysis completed",
		"units", model.Summary.TotalUnits,
		"forms", model.Summary.TotalForms,
		"datamodules", model.Summary.TotalDataModules,
		"warnings", len(model.Warnings),
		"duration", time.Since(start))
	return model, nil
}

// validateFileSet rejects nil sets and unknown role tags
func validateFileSet(files types.FileSet) error {
	if files == nil {
		return fmt.Errorf("%w: file set is nil", ErrInvalidFileSet)
	}
	var unknown []string
	for role := range files {
		if !slices.Contains(parsers.KnownRoles, role) {
			unknown = append(unknown, role)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown role %q", ErrInvalidFileSet, unknown[0])
	}
	return nil
}

// enrich adds the optional code statistics, licenses and git provenance
func (a *Analyzer) enrich(model *types.ProjectModel) {
	if a.opts.CodeStats != nil && a.opts.CodeStats.IsEnabled() {
		model.CodeStats = a.opts.CodeStats.GetStats()
	}

	basePath := a.provider.GetBasePath()
	if basePath == "" {
		return
	}
	if a.opts.DetectLicenses {
		model.Licenses = license.NewLicenseDetector().DetectLicenses(basePath)
		a.logger.Debug("License detection finished", "path", basePath, "licenses", len(model.Licenses))
	}
	if a.opts.DetectGit {
		model.Git = git.GetGitInfo(basePath)
	}
}

// analysisRun holds the state of one Analyze call
type analysisRun struct {
	*Analyzer
	model *types.ProjectModel
}

func (r *analysisRun) warn(path, role, message string) {
	r.logger.Warn("Skipping file", "path", path, "role", role, "reason", message)
	r.progress.Warning(path, message)
	r.model.Warnings = append(r.model.Warnings, types.ParseWarning{Path: path, Role: role, Message: message})
}

// read returns the decoded text of a file and feeds the code statistics
func (r *analysisRun) read(path string) (string, error) {
	data, err := r.provider.ReadFile(path)
	if err != nil {
		return "", err
	}
	if data == nil {
		data = []byte{}
	}
	if r.opts.CodeStats != nil {
		r.opts.CodeStats.ProcessFile(path, "", data)
	}
	return parsers.DecodeSource(data), nil
}

// unitResult is the outcome of reading and parsing one unit file
type unitResult struct {
	unit         *types.LegacyUnit
	isDataModule bool
	isForm       bool
	err          error
}

// parseUnits reads and parses unit files in parallel and registers the
// results in input order, so the last file wins for duplicate unit names
func (r *analysisRun) parseUnits(paths []string) {
	results := make([]unitResult, len(paths))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = r.parseUnit(path)
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range paths {
		r.progress.FileParsing(path, parsers.RolePas)
		result := results[i]
		switch {
		case result.err != nil:
			r.warn(path, parsers.RolePas, result.err.Error())
		case result.unit == nil:
			r.warn(path, parsers.RolePas, "no unit declaration found")
		default:
			r.registerUnit(result)
		}
	}
}

func (r *analysisRun) parseUnit(path string) (result unitResult) {
	defer func() {
		if p := recover(); p != nil {
			result = unitResult{err: fmt.Errorf("extraction failed: %v", p)}
		}
	}()

	content, err := r.read(path)
	if err != nil {
		return unitResult{err: fmt.Errorf("failed to read file: %w", err)}
	}
	unit := r.pascal.ParseUnit(content, path)
	if unit == nil {
		return unitResult{}
	}
	return unitResult{
		unit:         unit,
		isDataModule: r.pascal.IsDataModule(content),
		isForm:       r.pascal.IsForm(content),
	}
}

// registerUnit stores a unit and classifies it. A datamodule marker wins
// over a form marker.
func (r *analysisRun) registerUnit(result unitResult) {
	unit := result.unit
	if r.model.Units.Set(unit.Name, unit) {
		r.logger.Warn("Duplicate unit name, keeping the last parsed file", "unit", unit.Name, "path", unit.SourcePath)
		r.model.DataModules.Delete(unit.Name)
		r.model.Forms.Delete(unit.Name)
	}

	kind := kindUnit
	switch {
	case result.isDataModule:
		r.model.DataModules.Set(unit.Name, unit)
		kind = kindDataModule
	case result.isForm:
		r.model.Forms.Set(unit.Name, unit)
		kind = kindForm
	}
	r.progress.UnitRegistered(unit.Name, kind, unit.SourcePath)
	r.logger.Debug("Parsed unit", "unit", unit.Name, "kind", kind, "classes", len(unit.Classes))
}

// parseForms attaches form information to the unit of the same name.
// Forms without such a unit are dropped.
func (r *analysisRun) parseForms(paths []string) {
	for _, path := range paths {
		r.progress.FileParsing(path, parsers.RoleDfm)
		content, err := r.read(path)
		if err != nil {
			r.warn(path, parsers.RoleDfm, fmt.Sprintf("failed to read file: %v", err))
			continue
		}

		info := r.forms.ParseForm(content, path)
		if info == nil {
			r.warn(path, parsers.RoleDfm, "no object declaration found")
			continue
		}

		unit, ok := r.model.Units.Get(info.Name)
		if !ok {
			r.logger.Warn("Dropping form without matching unit", "form", info.Name, "path", path)
			r.progress.Warning(path, fmt.Sprintf("no unit named %s for this form", info.Name))
			continue
		}
		unit.FormInfo = info
		r.logger.Debug("Attached form", "form", info.Name, "components", len(info.Components))
	}
}

// parsePrograms stores the program information under ProjectUnitKey; with
// several program files the last one wins
func (r *analysisRun) parsePrograms(paths []string) {
	for _, path := range paths {
		r.progress.FileParsing(path, parsers.RoleDpr)
		content, err := r.read(path)
		if err != nil {
			r.warn(path, parsers.RoleDpr, fmt.Sprintf("failed to read file: %v", err))
			continue
		}

		info := r.program.ParseProgram(content, path)
		r.model.Units.Set(types.ProjectUnitKey, &types.LegacyUnit{
			Name:               info.ProjectName,
			SourcePath:         path,
			Classes:            []types.ClassDecl{},
			Procedures:         []types.RoutineDecl{},
			Functions:          []types.RoutineDecl{},
			SQLQueries:         []types.SQLQuery{},
			EventHandlers:      []types.EventHandler{},
			DatabaseComponents: []types.DBComponentRef{},
			UsesClause:         info.UsesClause,
			Project:            info,
		})
		r.logger.Info("Parsed program", "project", info.ProjectName, "main_form", info.MainFormName, "forms", len(info.AllFormNames))
	}
}

// parseProjectFiles records framework and runtime packages from .dproj files
func (r *analysisRun) parseProjectFiles(paths []string) {
	for _, path := range paths {
		r.progress.FileParsing(path, parsers.RoleDproj)
		content, err := r.read(path)
		if err != nil {
			r.warn(path, parsers.RoleDproj, fmt.Sprintf("failed to read file: %v", err))
			continue
		}

		project := r.dproj.ParseDproj(content, path)
		if r.model.Summary.Framework == "" {
			r.model.Summary.Framework = project.Framework
		}
		for _, pkg := range project.Packages {
			if !slices.Contains(r.model.Summary.Packages, pkg) {
				r.model.Summary.Packages = append(r.model.Summary.Packages, pkg)
			}
		}
		r.logger.Debug("Parsed project file", "path", path, "framework", project.Framework, "packages", len(project.Packages))
	}
}

// acceptOnly counts files of roles that carry no structure of their own
func (r *analysisRun) acceptOnly(role string, paths []string) {
	for _, path := range paths {
		r.logger.Debug("Accepted file without parsing", "path", path, "role", role)
		if r.opts.CodeStats != nil {
			r.opts.CodeStats.ProcessFile(path, "", readOrNil(r.provider, path))
		}
	}
}

func readOrNil(provider types.Provider, path string) []byte {
	data, err := provider.ReadFile(path)
	if err != nil || data == nil {
		return []byte{}
	}
	return data
}
