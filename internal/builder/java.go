package builder

import (
	"path"
	"regexp"
	"slices"
	"strings"
)

var packageLineRegex = regexp.MustCompile(`(?m)^[ \t]*package\s+[\w.]+\s*;`)

// Source roots a package can be inferred from
var sourceRoots = []string{"src/main/java/", "src/test/java/"}

// RoleImport is the import set a Java file receives when its file name
// contains Role
type RoleImport struct {
	Role    string   `json:"role" yaml:"role"`
	Imports []string `json:"imports" yaml:"imports"`
}

// RoleImports in matching priority order
var RoleImports = []RoleImport{
	{Role: "Controller", Imports: []string{
		"org.springframework.web.bind.annotation.*",
		"org.springframework.http.ResponseEntity",
		"org.springframework.beans.factory.annotation.Autowired",
	}},
	{Role: "Service", Imports: []string{
		"org.springframework.stereotype.Service",
		"org.springframework.beans.factory.annotation.Autowired",
	}},
	{Role: "Repository", Imports: []string{
		"org.springframework.data.jpa.repository.JpaRepository",
		"org.springframework.stereotype.Repository",
	}},
	{Role: "Application", Imports: []string{
		"org.springframework.boot.SpringApplication",
		"org.springframework.boot.autoconfigure.SpringBootApplication",
	}},
}

// HasPackage reports whether Java source declares its package
func HasPackage(content string) bool {
	return packageLineRegex.MatchString(content)
}

// InferPackage derives the package of a Java file from the directories
// between its source root and the file name. Paths outside a source root,
// or directly inside one, get fallback.
func InferPackage(relPath, fallback string) string {
	p := strings.ReplaceAll(relPath, `\`, "/")
	for _, root := range sourceRoots {
		idx := strings.Index(p, root)
		if idx < 0 {
			continue
		}
		dir := path.Dir(p[idx+len(root):])
		if dir == "." {
			return fallback
		}
		return strings.ReplaceAll(dir, "/", ".")
	}
	return fallback
}

// EnsurePackage prepends a package declaration when content has none
func EnsurePackage(content, pkg string) string {
	if pkg == "" || HasPackage(content) {
		return content
	}
	return "package " + pkg + ";\n\n" + content
}

// RoleOf returns the role whose keyword appears in the file name, with its
// imports
func RoleOf(relPath string) (RoleImport, bool) {
	name := path.Base(strings.ReplaceAll(relPath, `\`, "/"))
	for _, role := range RoleImports {
		if strings.Contains(name, role.Role) {
			return role, true
		}
	}
	return RoleImport{}, false
}

// InjectImports adds the missing imports. Each goes after the last import
// line, else after the package line and its blank line, else at the top.
func InjectImports(content string, imports []string) string {
	eol := "\n"
	if strings.Contains(content, "\r\n") {
		eol = "\r\n"
	}
	lines := strings.Split(content, eol)

	for _, imp := range imports {
		stmt := "import " + imp + ";"
		if hasImport(lines, stmt) {
			continue
		}
		lines = slices.Insert(lines, importPosition(lines), stmt)
	}
	return strings.Join(lines, eol)
}

func hasImport(lines []string, stmt string) bool {
	for _, line := range lines {
		if strings.Join(strings.Fields(line), " ") == stmt {
			return true
		}
	}
	return false
}

func importPosition(lines []string) int {
	packageLine, lastImport := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "package "):
			if packageLine < 0 {
				packageLine = i
			}
		case strings.HasPrefix(trimmed, "import "):
			lastImport = i
		}
	}

	switch {
	case lastImport >= 0:
		return lastImport + 1
	case packageLine >= 0:
		next := packageLine + 1
		if next < len(lines) && strings.TrimSpace(lines[next]) == "" {
			return next + 1
		}
		return next
	default:
		return 0
	}
}
