// Package parsers provides the pattern-based extractors for Delphi sources
// (units, forms, programs, .dproj files) and the Maven descriptor inspection
// used when materializing Java projects.
//
// Extraction is deliberately text-pattern based: it pulls named constructs out
// of the whole text and does no type analysis.
package parsers

import "github.com/petrarca/delphi-migrator/internal/types"

// File roles handed over by the locator
const (
	RolePas   = "pas"
	RoleDfm   = "dfm"
	RoleDpr   = "dpr"
	RoleDpk   = "dpk"
	RoleInc   = "inc"
	RoleDproj = "dproj"
)

// KnownRoles lists every accepted role tag in processing order
var KnownRoles = []string{RolePas, RoleDfm, RoleDpr, RoleDpk, RoleInc, RoleDproj}

// DatabaseComponentTypes are the field types reported as database components
var DatabaseComponentTypes = []string{
	"TQuery",
	"TTable",
	"TDataSource",
	"TDatabase",
	"TADOQuery",
	"TADOTable",
}

// EventHandlerSuffixes mark a method name as an event handler
var EventHandlerSuffixes = []string{"Click", "Change", "Enter", "Exit", "KeyPress", "KeyDown", "KeyUp"}

// DataAwareComponentTypes are the data-bound widget types of a form
var DataAwareComponentTypes = []string{"TDBEdit", "TDBGrid", "TDBComboBox", "TDBMemo", "TDBCheckBox"}

// minSQLLength is the shortest trimmed literal kept as an SQL query
const minSQLLength = 6

// Class markers used for unit classification (exact case)
const (
	markerDataModule = "TDataModule"
	markerForm       = "TForm"
	markerFrame      = "TFrame"
	defaultParent    = "TObject"
)

var sqlKinds = []types.SQLKind{types.SQLSelect, types.SQLInsert, types.SQLUpdate, types.SQLDelete}
