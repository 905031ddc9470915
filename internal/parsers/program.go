package parsers

import (
	"regexp"

	"github.com/petrarca/delphi-migrator/internal/types"
)

var (
	programNameRegex = regexp.MustCompile(`(?i)\b(?:program|library)\s+(\w+)\s*;`)
	createFormRegex  = regexp.MustCompile(`(?i)Application\.CreateForm\s*\(\s*(\w+)`)
)

// ProgramParser extracts project information from .dpr (and .dpk) files
type ProgramParser struct {
	pascal *PascalParser
}

// NewProgramParser creates a new ProgramParser instance
func NewProgramParser() *ProgramParser {
	return &ProgramParser{pascal: NewPascalParser()}
}

// ParseProgram builds the ProjectInfo of a program file. A missing
// `program Name;` header leaves ProjectName empty.
func (p *ProgramParser) ParseProgram(content, path string) *types.ProjectInfo {
	forms := p.ExtractForms(content)
	info := &types.ProjectInfo{
		ProjectName:  p.ExtractProgramName(content),
		SourcePath:   path,
		AllFormNames: forms,
		UsesClause:   p.pascal.ExtractUsesClause(content),
	}
	if len(forms) > 0 {
		info.MainFormName = forms[0]
	}
	return info
}

// ExtractProgramName returns the name from the `program Name;` header
func (p *ProgramParser) ExtractProgramName(content string) string {
	if matches := programNameRegex.FindStringSubmatch(content); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// ExtractForms returns the forms created via Application.CreateForm in order.
// The first one is the main form.
func (p *ProgramParser) ExtractForms(content string) []string {
	forms := []string{}
	for _, match := range createFormRegex.FindAllStringSubmatch(content, -1) {
		forms = append(forms, match[1])
	}
	return forms
}
