package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/petrarca/delphi-migrator/internal/validation"
)

// ProjectConfigFile is the per-project configuration file name
const ProjectConfigFile = ".delphi-migrator.yml"

// Generated project defaults
const (
	DefaultSpringBootVersion = "3.2.0"
	DefaultJavaVersion       = "17"
)

// ProjectConfig represents the .delphi-migrator.yml file of a legacy project
type ProjectConfig struct {
	Exclude           []string    `yaml:"exclude,omitempty"`
	PackageName       string      `yaml:"package_name,omitempty"`
	ProjectName       string      `yaml:"project_name,omitempty"`
	SpringBootVersion string      `yaml:"spring_boot_version,omitempty"`
	JavaVersion       JavaVersion `yaml:"java_version,omitempty"`
	RulesDir          string      `yaml:"rules_dir,omitempty"`
}

// JavaVersion accepts both `17` and `"17"`
type JavaVersion string

// UnmarshalYAML decodes a scalar of any type
func (v *JavaVersion) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("java_version must be a scalar (line %d)", node.Line)
	}
	*v = JavaVersion(strings.TrimSpace(node.Value))
	return nil
}

// LoadProjectConfig loads .delphi-migrator.yml from the project root.
// A missing file yields an empty config.
func LoadProjectConfig(root string) (*ProjectConfig, error) {
	configPath := filepath.Join(root, ProjectConfigFile)

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	return ParseProjectConfig(data)
}

// ParseProjectConfig validates and decodes project configuration content
func ParseProjectConfig(data []byte) (*ProjectConfig, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectConfigFile, err)
	}
	if raw == nil {
		return &ProjectConfig{}, nil
	}

	if err := validation.ValidateJSON(validation.ProjectConfigSchema, raw); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ProjectConfigFile, err)
	}

	var config ProjectConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectConfigFile, err)
	}

	if err := config.validateVersions(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ProjectConfigFile, err)
	}

	return &config, nil
}

func (c *ProjectConfig) validateVersions() error {
	if c.SpringBootVersion != "" && !semver.IsValid("v"+c.SpringBootVersion) {
		return fmt.Errorf("spring_boot_version %q is not a semantic version", c.SpringBootVersion)
	}
	if c.JavaVersion != "" {
		if _, err := strconv.Atoi(string(c.JavaVersion)); err != nil {
			return fmt.Errorf("java_version %q is not a number", c.JavaVersion)
		}
	}
	return nil
}

// SpringBoot returns the configured Spring Boot version or the default
func (c *ProjectConfig) SpringBoot() string {
	if c == nil || c.SpringBootVersion == "" {
		return DefaultSpringBootVersion
	}
	return c.SpringBootVersion
}

// Java returns the configured Java release or the default
func (c *ProjectConfig) Java() string {
	if c == nil || c.JavaVersion == "" {
		return DefaultJavaVersion
	}
	return string(c.JavaVersion)
}

// MergeExcludes merges config excludes with CLI excludes, keeping first-seen
// order and dropping duplicates
func (c *ProjectConfig) MergeExcludes(cliExcludes []string) []string {
	if c == nil {
		return cliExcludes
	}

	result := make([]string, 0, len(c.Exclude)+len(cliExcludes))
	seen := make(map[string]bool)
	for _, exclude := range append(append([]string{}, c.Exclude...), cliExcludes...) {
		if seen[exclude] {
			continue
		}
		seen[exclude] = true
		result = append(result, exclude)
	}
	return result
}
