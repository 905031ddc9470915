package parsers

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/petrarca/delphi-migrator/internal/types"
)

// Pre-compiled regexes for performance. Pascal keywords match in any case,
// framework type names match exactly.
var (
	unitNameRegex       = regexp.MustCompile(`(?i)\bunit\s+(\w+)\s*;`)
	classDeclRegex      = regexp.MustCompile(`(\w+)\s*=\s*(?i:class)\s*\(([^)]*)\)`)
	implementationRegex = regexp.MustCompile(`(?i)\bimplementation\b`)
	procedureRegex      = regexp.MustCompile(`(?i)\bprocedure\s+(\w+)(\s*\.)?`)
	functionRegex       = regexp.MustCompile(`(?i)\bfunction\s+(\w+)(\s*\.)?`)
	usesClauseRegex     = regexp.MustCompile(`(?is)\buses\s+(.*?);`)
	blockCommentRegex   = regexp.MustCompile(`(?s)\{.*?\}|\(\*.*?\*\)`)
	lineCommentRegex    = regexp.MustCompile(`//[^\n]*`)
	usesInPathRegex     = regexp.MustCompile(`(?i)\s+in\s+'[^']*'$`)

	sqlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?is)\.SQL\.Add\s*\(\s*['"]([^'"]*)['"]\s*\)`),
		regexp.MustCompile(`(?is)\.SQL\.Text\s*:=\s*['"]([^'"]*)['"]\s*;`),
		regexp.MustCompile(`(?is)ExecSQL\s*\(\s*['"]([^'"]*)['"]\s*\)`),
	}

	eventHandlerPatterns = compileEventHandlerPatterns()
	dbComponentPatterns  = compileDBComponentPatterns()
)

// compileEventHandlerPatterns matches the procedure keyword in any case and
// the suffix exactly, as IsEventHandler and ClassifyEvent do
func compileEventHandlerPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(EventHandlerSuffixes))
	for _, suffix := range EventHandlerSuffixes {
		patterns = append(patterns, regexp.MustCompile(`(?i:\bprocedure)\s+\w+\.(\w+`+regexp.QuoteMeta(suffix)+`)\s*\(.*?\)\s*;`))
	}
	return patterns
}

func compileDBComponentPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(DatabaseComponentTypes))
	for _, typeName := range DatabaseComponentTypes {
		patterns = append(patterns, regexp.MustCompile(`(\w+)\s*:\s*`+typeName+`\b`))
	}
	return patterns
}

// PascalParser extracts structural facts from Pascal unit source text
type PascalParser struct{}

// NewPascalParser creates a new PascalParser instance
func NewPascalParser() *PascalParser {
	return &PascalParser{}
}

// ParseUnit builds a LegacyUnit from unit source. It returns nil when the
// text has no `unit Name;` header.
func (p *PascalParser) ParseUnit(content, path string) *types.LegacyUnit {
	name := p.ExtractUnitName(content)
	if name == "" {
		return nil
	}

	return &types.LegacyUnit{
		Name:               name,
		SourcePath:         path,
		Classes:            p.ExtractClasses(content),
		Procedures:         p.ExtractProcedures(content),
		Functions:          p.ExtractFunctions(content),
		SQLQueries:         p.ExtractSQLQueries(content),
		EventHandlers:      p.ExtractEventHandlers(content),
		DatabaseComponents: p.ExtractDatabaseComponents(content),
		UsesClause:         p.ExtractUsesClause(content),
	}
}

// ExtractUnitName returns the name from the first `unit Name;` header
func (p *PascalParser) ExtractUnitName(content string) string {
	if matches := unitNameRegex.FindStringSubmatch(content); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ExtractClasses returns every `Name = class(Parent)` declaration with its
// implemented methods
func (p *PascalParser) ExtractClasses(content string) []types.ClassDecl {
	classes := []types.ClassDecl{}
	for _, match := range classDeclRegex.FindAllStringSubmatch(content, -1) {
		name := match[1]
		parent := strings.TrimSpace(match[2])
		if parent == "" {
			parent = defaultParent
		}

		classes = append(classes, types.ClassDecl{
			Name:         name,
			Parent:       parent,
			Methods:      p.ExtractClassMethods(content, name),
			IsForm:       strings.Contains(parent, markerForm) || strings.Contains(parent, markerFrame),
			IsDataModule: strings.Contains(parent, markerDataModule),
		})
	}
	return classes
}

// ExtractClassMethods returns the `Class.Method` implementations of a class
func (p *PascalParser) ExtractClassMethods(content, className string) []types.MethodDecl {
	methodRegex := regexp.MustCompile(`(?i)\b(procedure|function)\s+` + regexp.QuoteMeta(className) + `\.(\w+)`)

	methods := []types.MethodDecl{}
	for _, loc := range methodRegex.FindAllStringSubmatchIndex(content, -1) {
		kind := types.MethodProcedure
		if strings.EqualFold(content[loc[2]:loc[3]], string(types.MethodFunction)) {
			kind = types.MethodFunction
		}
		name := content[loc[4]:loc[5]]
		body, _ := extractBlockBody(content, headerEnd(content, loc[1]))

		methods = append(methods, types.MethodDecl{
			Kind:           kind,
			Name:           name,
			Body:           body,
			IsEventHandler: p.IsEventHandler(name),
		})
	}
	return methods
}

// ExtractMethodBody returns the body of the first implementation of
// Class.Method, or an empty string
func (p *PascalParser) ExtractMethodBody(content, className, methodName string) string {
	signature := regexp.MustCompile(`(?i)\b(procedure|function)\s+` +
		regexp.QuoteMeta(className) + `\.` + regexp.QuoteMeta(methodName) + `\b`)
	loc := signature.FindStringIndex(content)
	if loc == nil {
		return ""
	}
	body, _ := extractBlockBody(content, headerEnd(content, loc[1]))
	return body
}

// ExtractProcedures returns the free-standing procedures of the unit
func (p *PascalParser) ExtractProcedures(content string) []types.RoutineDecl {
	return p.extractRoutines(content, procedureRegex)
}

// ExtractFunctions returns the free-standing functions of the unit
func (p *PascalParser) ExtractFunctions(content string) []types.RoutineDecl {
	return p.extractRoutines(content, functionRegex)
}

// extractRoutines scans the implementation section (or the whole text when
// there is none) for routines that are neither class methods nor forward or
// external declarations
func (p *PascalParser) extractRoutines(content string, pattern *regexp.Regexp) []types.RoutineDecl {
	offset := 0
	if loc := implementationRegex.FindStringIndex(content); loc != nil {
		offset = loc[1]
	}
	section := content[offset:]

	routines := []types.RoutineDecl{}
	for _, loc := range pattern.FindAllStringSubmatchIndex(section, -1) {
		if loc[4] >= 0 {
			continue // qualified Class.Method
		}
		end := headerEnd(section, loc[1])
		if directive := nextWord(section, end); directive == "forward" || directive == "external" {
			continue
		}
		body, ok := extractBlockBody(section, end)
		if !ok {
			continue
		}
		routines = append(routines, types.RoutineDecl{
			Name: section[loc[2]:loc[3]],
			Body: body,
		})
	}
	return routines
}

// ExtractSQLQueries returns the SQL literals passed to SQL.Add, assigned to
// SQL.Text or given to ExecSQL. Literals of five characters or fewer are noise.
func (p *PascalParser) ExtractSQLQueries(content string) []types.SQLQuery {
	queries := []types.SQLQuery{}
	for _, pattern := range sqlPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			text := strings.TrimSpace(match[1])
			if utf8.RuneCountInString(text) < minSQLLength {
				continue
			}
			queries = append(queries, types.SQLQuery{Text: text, Kind: ClassifySQL(text)})
		}
	}
	return queries
}

// ClassifySQL returns the statement kind from the first keyword
func ClassifySQL(text string) types.SQLKind {
	upper := strings.ToUpper(strings.TrimSpace(text))
	for _, kind := range sqlKinds {
		if strings.HasPrefix(upper, string(kind)) {
			return kind
		}
	}
	return types.SQLOther
}

// ExtractEventHandlers returns the implemented `Class.XxxClick(...)` style handlers
func (p *PascalParser) ExtractEventHandlers(content string) []types.EventHandler {
	handlers := []types.EventHandler{}
	for _, pattern := range eventHandlerPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			handlers = append(handlers, types.EventHandler{
				Name:     match[1],
				Category: ClassifyEvent(match[1]),
			})
		}
	}
	return handlers
}

// ClassifyEvent derives the handler category from its name
func ClassifyEvent(name string) types.EventCategory {
	switch {
	case strings.Contains(name, "Click"):
		return types.EventButtonClick
	case strings.Contains(name, "Change"):
		return types.EventValueChange
	case strings.Contains(name, "Enter"), strings.Contains(name, "Exit"):
		return types.EventFocus
	case strings.Contains(name, "Key"):
		return types.EventKeyboard
	default:
		return types.EventOther
	}
}

// ExtractDatabaseComponents returns the fields declared with a database component type
func (p *PascalParser) ExtractDatabaseComponents(content string) []types.DBComponentRef {
	components := []types.DBComponentRef{}
	for i, pattern := range dbComponentPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			components = append(components, types.DBComponentRef{
				Name:     match[1],
				TypeName: DatabaseComponentTypes[i],
			})
		}
	}
	return components
}

// ExtractUsesClause returns the unit names of the first uses clause
func (p *PascalParser) ExtractUsesClause(content string) []string {
	matches := usesClauseRegex.FindStringSubmatch(content)
	if len(matches) < 2 {
		return []string{}
	}
	return splitUsesList(matches[1])
}

// splitUsesList strips comments and `in 'path'` suffixes from a uses list
func splitUsesList(list string) []string {
	list = blockCommentRegex.ReplaceAllString(list, "")
	list = lineCommentRegex.ReplaceAllString(list, "")

	units := []string{}
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		token = strings.TrimSpace(usesInPathRegex.ReplaceAllString(token, ""))
		if token == "" || strings.HasPrefix(token, "{") {
			continue
		}
		units = append(units, token)
	}
	return units
}

// IsDataModule reports whether the unit text declares a data module
func (p *PascalParser) IsDataModule(content string) bool {
	return strings.Contains(content, markerDataModule)
}

// IsForm reports whether the unit text declares a form or frame
func (p *PascalParser) IsForm(content string) bool {
	return strings.Contains(content, markerForm) || strings.Contains(content, markerFrame)
}

// IsEventHandler reports whether a method name ends with a UI event suffix
func (p *PascalParser) IsEventHandler(name string) bool {
	for _, suffix := range EventHandlerSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
