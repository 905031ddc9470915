package parsers

import (
	"regexp"
	"slices"

	"github.com/petrarca/delphi-migrator/internal/types"
)

var (
	formNameRegex      = regexp.MustCompile(`(?i)\b(?:object|inherited|inline)\s+(\w+)\s*:`)
	formComponentRegex = regexp.MustCompile(`(?i)\b(?:object|inherited|inline)\s+(\w+)\s*:\s*(\w+)`)
	dataSourceRegex    = regexp.MustCompile(`(?i)\bDataSource\s*=\s*(\w+)`)
	formQueryRegex     = regexp.MustCompile(`(?i)(\w+)\s*:\s*T.*Query`)
)

// FormParser extracts the component tree of textual .dfm files
type FormParser struct{}

// NewFormParser creates a new FormParser instance
func NewFormParser() *FormParser {
	return &FormParser{}
}

// ParseForm builds a FormInfo from .dfm text. It returns nil when no root
// object header is present.
func (p *FormParser) ParseForm(content, path string) *types.FormInfo {
	name := p.ExtractFormName(content)
	if name == "" {
		return nil
	}
	return &types.FormInfo{
		Name:                name,
		SourcePath:          path,
		Components:          p.ExtractComponents(content),
		DataSources:         p.ExtractDataSources(content),
		QueryComponentNames: p.ExtractQueries(content),
	}
}

// ExtractFormName returns the name of the root object
func (p *FormParser) ExtractFormName(content string) string {
	if matches := formNameRegex.FindStringSubmatch(content); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ExtractComponents returns every `object Name: Type` entry, root included
func (p *FormParser) ExtractComponents(content string) []types.FormComponent {
	components := []types.FormComponent{}
	for _, match := range formComponentRegex.FindAllStringSubmatch(content, -1) {
		components = append(components, types.FormComponent{
			Name:        match[1],
			TypeName:    match[2],
			IsDataAware: IsDataAware(match[2]),
		})
	}
	return components
}

// ExtractDataSources returns the distinct DataSource references in first-seen order
func (p *FormParser) ExtractDataSources(content string) []string {
	sources := []string{}
	for _, match := range dataSourceRegex.FindAllStringSubmatch(content, -1) {
		if !slices.Contains(sources, match[1]) {
			sources = append(sources, match[1])
		}
	}
	return sources
}

// ExtractQueries returns the names of query components
func (p *FormParser) ExtractQueries(content string) []string {
	queries := []string{}
	for _, match := range formQueryRegex.FindAllStringSubmatch(content, -1) {
		queries = append(queries, match[1])
	}
	return queries
}

// IsDataAware reports whether a component type is a data-bound widget
func IsDataAware(typeName string) bool {
	return slices.Contains(DataAwareComponentTypes, typeName)
}
