package types

import (
	"github.com/petrarca/delphi-migrator/internal/git"
	"github.com/petrarca/delphi-migrator/internal/metadata"
)

// ProjectUnitKey is the reserved key under which the program (.dpr) information
// is registered in ProjectModel.Units. Pascal identifiers cannot contain '<'.
const ProjectUnitKey = "<project>"

// MethodKind distinguishes procedures from functions
type MethodKind string

const (
	MethodProcedure MethodKind = "procedure"
	MethodFunction  MethodKind = "function"
)

// SQLKind classifies an SQL literal by its first keyword
type SQLKind string

const (
	SQLSelect SQLKind = "SELECT"
	SQLInsert SQLKind = "INSERT"
	SQLUpdate SQLKind = "UPDATE"
	SQLDelete SQLKind = "DELETE"
	SQLOther  SQLKind = "OTHER"
)

// EventCategory classifies an event handler by its name
type EventCategory string

const (
	EventButtonClick EventCategory = "BUTTON_CLICK"
	EventValueChange EventCategory = "VALUE_CHANGE"
	EventFocus       EventCategory = "FOCUS"
	EventKeyboard    EventCategory = "KEYBOARD"
	EventOther       EventCategory = "OTHER"
)

// LegacyUnit is one parsed Pascal compilation unit
type LegacyUnit struct {
	Name               string           `json:"name" yaml:"name"`
	SourcePath         string           `json:"file_path" yaml:"file_path"`
	Classes            []ClassDecl      `json:"classes" yaml:"classes"`
	Procedures         []RoutineDecl    `json:"procedures" yaml:"procedures"`
	Functions          []RoutineDecl    `json:"functions" yaml:"functions"`
	SQLQueries         []SQLQuery       `json:"sql_queries" yaml:"sql_queries"`
	EventHandlers      []EventHandler   `json:"event_handlers" yaml:"event_handlers"`
	DatabaseComponents []DBComponentRef `json:"database_components" yaml:"database_components"`
	UsesClause         []string         `json:"uses_clause" yaml:"uses_clause"`
	FormInfo           *FormInfo        `json:"form_info,omitempty" yaml:"form_info,omitempty"`

	// Project is only set on the synthetic unit stored under ProjectUnitKey
	Project *ProjectInfo `json:"project,omitempty" yaml:"project,omitempty"`
}

// ClassDecl is a class declared as `Name = class(Parent)`
type ClassDecl struct {
	Name         string       `json:"name" yaml:"name"`
	Parent       string       `json:"parent" yaml:"parent"`
	Methods      []MethodDecl `json:"methods" yaml:"methods"`
	IsForm       bool         `json:"is_form" yaml:"is_form"`
	IsDataModule bool         `json:"is_datamodule" yaml:"is_datamodule"`
}

// MethodDecl is a method implemented as `Class.Method`
type MethodDecl struct {
	Kind           MethodKind `json:"type" yaml:"type"`
	Name           string     `json:"name" yaml:"name"`
	Body           string     `json:"body" yaml:"body"`
	IsEventHandler bool       `json:"is_event_handler" yaml:"is_event_handler"`
}

// RoutineDecl is a free-standing procedure or function
type RoutineDecl struct {
	Name string `json:"name" yaml:"name"`
	Body string `json:"body" yaml:"body"`
}

// SQLQuery is an SQL string literal found in source
type SQLQuery struct {
	Text string  `json:"sql" yaml:"sql"`
	Kind SQLKind `json:"type" yaml:"type"`
}

// EventHandler is a UI event handler implementation
type EventHandler struct {
	Name     string        `json:"name" yaml:"name"`
	Category EventCategory `json:"type" yaml:"type"`
}

// DBComponentRef is a field declared with a recognized database component type
type DBComponentRef struct {
	Name     string `json:"name" yaml:"name"`
	TypeName string `json:"type" yaml:"type"`
}

// FormInfo is the component tree of a .dfm file
type FormInfo struct {
	Name                string          `json:"name" yaml:"name"`
	SourcePath          string          `json:"file_path" yaml:"file_path"`
	Components          []FormComponent `json:"components" yaml:"components"`
	DataSources         []string        `json:"data_sources" yaml:"data_sources"`
	QueryComponentNames []string        `json:"queries" yaml:"queries"`
}

// FormComponent is one `object Name: Type` entry of a form
type FormComponent struct {
	Name        string `json:"name" yaml:"name"`
	TypeName    string `json:"type" yaml:"type"`
	IsDataAware bool   `json:"is_data_aware" yaml:"is_data_aware"`
}

// ProjectInfo is the information extracted from a program (.dpr) file
type ProjectInfo struct {
	ProjectName  string   `json:"name" yaml:"name"`
	SourcePath   string   `json:"file_path" yaml:"file_path"`
	MainFormName string   `json:"main_form" yaml:"main_form"`
	AllFormNames []string `json:"forms" yaml:"forms"`
	UsesClause   []string `json:"uses_clause" yaml:"uses_clause"`
}

// ParseWarning records a file that could not be (fully) analyzed
type ParseWarning struct {
	Path    string `json:"path" yaml:"path"`
	Role    string `json:"role" yaml:"role"`
	Message string `json:"message" yaml:"message"`
}

// Summary holds the derived project figures
type Summary struct {
	TotalUnits       int      `json:"total_units" yaml:"total_units"`
	TotalForms       int      `json:"total_forms" yaml:"total_forms"`
	TotalDataModules int      `json:"total_datamodules" yaml:"total_datamodules"`
	HasDatabase      bool     `json:"has_database" yaml:"has_database"`
	MainTechnologies []string `json:"main_technologies" yaml:"main_technologies"`
	// Reasons maps each technology to the uses entries or packages that matched it
	Reasons   map[string][]string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Framework string              `json:"framework,omitempty" yaml:"framework,omitempty"` // VCL or FMX, from .dproj
	Packages  []string            `json:"packages,omitempty" yaml:"packages,omitempty"`   // DCC_UsePackage entries
	// ExternalUnits are used units not defined by the project (RTL, VCL, third party)
	ExternalUnits []string `json:"external_units,omitempty" yaml:"external_units,omitempty"`
}

// License is a license detected in the legacy project directory
type License struct {
	LicenseName string  `json:"license_name" yaml:"license_name"`
	SourceFile  string  `json:"source_file" yaml:"source_file"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

// ProjectModel is the result of analyzing a Delphi project
type ProjectModel struct {
	Metadata    *metadata.AnalysisMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Units       *UnitMap                   `json:"units" yaml:"units"`
	DataModules *UnitMap                   `json:"data_modules" yaml:"data_modules"`
	Forms       *UnitMap                   `json:"forms" yaml:"forms"`
	Summary     Summary                    `json:"summary" yaml:"summary"`
	Warnings    []ParseWarning             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Licenses    []License                  `json:"licenses,omitempty" yaml:"licenses,omitempty"`
	Git         *git.GitInfo               `json:"git,omitempty" yaml:"git,omitempty"`
	CodeStats   interface{}                `json:"code_stats,omitempty" yaml:"code_stats,omitempty"`
}

// NewProjectModel creates an empty model
func NewProjectModel() *ProjectModel {
	return &ProjectModel{
		Units:       NewUnitMap(),
		DataModules: NewUnitMap(),
		Forms:       NewUnitMap(),
		Summary:     Summary{MainTechnologies: []string{}},
	}
}

// Project returns the program information, if a .dpr file was analyzed
func (m *ProjectModel) Project() *ProjectInfo {
	if unit, ok := m.Units.Get(ProjectUnitKey); ok {
		return unit.Project
	}
	return nil
}
