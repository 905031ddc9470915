package parsers

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var (
	frameworkTypeRegex = regexp.MustCompile(`<FrameworkType>([^<]+)</FrameworkType>`)
	mainSourceRegex    = regexp.MustCompile(`<MainSource>([^<]+)</MainSource>`)
	usePackageRegex    = regexp.MustCompile(`<DCC_UsePackage>([^<]+)</DCC_UsePackage>`)
)

// DelphiParser handles Delphi project file parsing (.dproj)
type DelphiParser struct{}

// DelphiProject represents a parsed .dproj file
type DelphiProject struct {
	Name       string
	Framework  string   // VCL or FMX
	MainSource string   // the .dpr the project compiles
	Packages   []string // DCC_UsePackage entries
}

// NewDelphiParser creates a new DelphiParser instance
func NewDelphiParser() *DelphiParser {
	return &DelphiParser{}
}

// ParseDproj parses a .dproj file and extracts project information
func (p *DelphiParser) ParseDproj(content, path string) DelphiProject {
	return DelphiProject{
		Name:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Framework:  firstElement(frameworkTypeRegex, content),
		MainSource: firstElement(mainSourceRegex, content),
		Packages:   p.extractPackages(content),
	}
}

func firstElement(re *regexp.Regexp, content string) string {
	if matches := re.FindStringSubmatch(content); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}

// extractPackages collects DCC_UsePackage entries across all build
// configurations, skipping $(...) references and duplicates
func (p *DelphiParser) extractPackages(content string) []string {
	packages := []string{}
	for _, match := range usePackageRegex.FindAllStringSubmatch(content, -1) {
		for _, pkg := range strings.Split(match[1], ";") {
			pkg = strings.TrimSpace(pkg)
			if pkg == "" || strings.HasPrefix(pkg, "$") || slices.Contains(packages, pkg) {
				continue
			}
			packages = append(packages, pkg)
		}
	}
	return packages
}

// IsVCL checks if the project uses VCL framework
func (p *DelphiParser) IsVCL(framework string) bool {
	return strings.EqualFold(framework, "VCL")
}

// IsFMX checks if the project uses FireMonkey (FMX) framework
func (p *DelphiParser) IsFMX(framework string) bool {
	return strings.EqualFold(framework, "FMX")
}
