package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed all:techs
var coreRulesFS embed.FS

// TechnologyRule maps uses-clause markers to a data access technology.
// A rule matches when any marker is a case-sensitive substring of any unit
// or package name.
type TechnologyRule struct {
	Tech        string   `yaml:"tech" json:"tech"`
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"`
	Order       int      `yaml:"order" json:"order"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Markers     []string `yaml:"markers" json:"markers"`
}

// LoadEmbeddedRules loads all rules from the embedded filesystem, sorted by order
func LoadEmbeddedRules() ([]TechnologyRule, error) {
	rules, err := loadRules(coreRulesFS, "techs")
	if err != nil {
		return nil, fmt.Errorf("failed to walk embedded rules: %w", err)
	}
	return rules, nil
}

// LoadExternalRules loads rules from an external directory
func LoadExternalRules(rulesDir string) ([]TechnologyRule, error) {
	rules, err := loadRules(os.DirFS(rulesDir), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to walk external rules: %w", err)
	}
	return rules, nil
}

// Merge appends extra rules, replacing base rules with the same tech
func Merge(base, extra []TechnologyRule) []TechnologyRule {
	merged := slices.Clone(base)
	for _, rule := range extra {
		idx := slices.IndexFunc(merged, func(r TechnologyRule) bool { return r.Tech == rule.Tech })
		if idx >= 0 {
			merged[idx] = rule
		} else {
			merged = append(merged, rule)
		}
	}
	sortRules(merged)
	return merged
}

func loadRules(fsys fs.FS, root string) ([]TechnologyRule, error) {
	var rules []TechnologyRule

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read rule file %s: %w", path, err)
		}

		var rule TechnologyRule
		if err := yaml.Unmarshal(content, &rule); err != nil {
			return fmt.Errorf("failed to parse rule file %s: %w", path, err)
		}

		// Derive type from folder if not specified
		if rule.Type == "" {
			rule.Type = deriveTypeFromPath(path)
		}

		if err := validateRule(&rule); err != nil {
			return fmt.Errorf("invalid rule in %s: %w", path, err)
		}

		rules = append(rules, rule)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortRules(rules)
	return rules, nil
}

func sortRules(rules []TechnologyRule) {
	slices.SortStableFunc(rules, func(a, b TechnologyRule) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Tech, b.Tech)
	})
}

// deriveTypeFromPath extracts the type from the folder name in the path
// e.g., "techs/dataaccess/ado.yaml" -> "dataaccess"
func deriveTypeFromPath(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// validateRule validates a rule definition
func validateRule(rule *TechnologyRule) error {
	if rule.Tech == "" {
		return fmt.Errorf("tech is required")
	}
	if rule.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(rule.Markers) == 0 {
		return fmt.Errorf("at least one marker is required")
	}
	for i, marker := range rule.Markers {
		if marker == "" {
			return fmt.Errorf("marker %d: empty marker", i)
		}
	}
	return nil
}

// Match returns the names of the rules matched by the given unit or package
// names, in rule order
func Match(rules []TechnologyRule, names []string) []string {
	technologies := []string{}
	for _, rule := range rules {
		if len(rule.MatchedBy(names)) > 0 {
			technologies = append(technologies, rule.Name)
		}
	}
	return technologies
}

// MatchedBy returns the distinct names containing one of the rule markers,
// in first-seen order
func (r TechnologyRule) MatchedBy(names []string) []string {
	var matched []string
	for _, name := range names {
		if slices.Contains(matched, name) {
			continue
		}
		for _, marker := range r.Markers {
			if strings.Contains(name, marker) {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched
}
