package parsers

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

var pomProjectRegex = regexp.MustCompile(`(?i)<project[\s>]`)

// EssentialStarters are the Spring Boot starters a generated service needs
var EssentialStarters = []string{
	"spring-boot-starter-web",
	"spring-boot-starter-data-jpa",
	"spring-boot-starter-validation",
}

// MavenProject represents a parsed pom.xml structure
type MavenProject struct {
	XMLName      xml.Name          `xml:"project"`
	GroupId      string            `xml:"groupId"`
	ArtifactId   string            `xml:"artifactId"`
	Version      string            `xml:"version"`
	Parent       MavenParent       `xml:"parent"`
	Dependencies MavenDependencies `xml:"dependencies"`
}

// MavenDependencies holds the list of dependencies
type MavenDependencies struct {
	Dependencies []MavenDependency `xml:"dependency"`
}

// MavenDependency represents a single Maven dependency
type MavenDependency struct {
	GroupId    string `xml:"groupId"`
	ArtifactId string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// MavenParent represents the parent POM reference
type MavenParent struct {
	GroupId      string `xml:"groupId"`
	ArtifactId   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// MavenParser inspects generated pom.xml descriptors
type MavenParser struct{}

// NewMavenParser creates a new Maven parser
func NewMavenParser() *MavenParser {
	return &MavenParser{}
}

// LooksLikeDescriptor reports whether content is a non-empty Maven project descriptor
func (p *MavenParser) LooksLikeDescriptor(content string) bool {
	return strings.TrimSpace(content) != "" && pomProjectRegex.MatchString(content)
}

// ParsePom decodes the descriptor structure
func (p *MavenParser) ParsePom(content string) (MavenProject, error) {
	var project MavenProject
	if err := xml.Unmarshal([]byte(content), &project); err != nil {
		return MavenProject{}, fmt.Errorf("invalid pom.xml: %w", err)
	}
	return project, nil
}

// HasDependency reports whether the project declares artifactId
func (mp MavenProject) HasDependency(artifactId string) bool {
	for _, dep := range mp.Dependencies.Dependencies {
		if strings.TrimSpace(dep.ArtifactId) == artifactId {
			return true
		}
	}
	return false
}

// MissingStarters returns the essential starters the descriptor does not declare
func (p *MavenParser) MissingStarters(project MavenProject) []string {
	var missing []string
	for _, starter := range EssentialStarters {
		if !project.HasDependency(starter) {
			missing = append(missing, starter)
		}
	}
	return missing
}
