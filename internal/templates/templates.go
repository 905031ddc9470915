// Package templates renders the default files of a materialized Spring Boot
// project: build descriptor, application configuration, README, .gitignore
// and the two validation scripts.
package templates

import (
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

//go:embed files/*.tmpl
var files embed.FS

// Template names
const (
	Pom                   = "pom.xml"
	ApplicationProperties = "application.properties"
	Readme                = "README.md"
	GitIgnore             = "gitignore"
	ValidateSh            = "validate.sh"
	ValidateBat           = "validate.bat"
)

// Names lists every embedded template
var Names = []string{Pom, ApplicationProperties, Readme, GitIgnore, ValidateSh, ValidateBat}

// Data parameterizes the default files
type Data struct {
	ProjectName       string
	PackageName       string
	SpringBootVersion string
	JavaVersion       string
}

// PackagePath returns the package as a directory path, e.g. com/acme/app
func (d Data) PackagePath() string {
	return strings.ReplaceAll(d.PackageName, ".", "/")
}

// Renderer parses embedded templates once and renders them on demand
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: template.FuncMap{
			"lower": strings.ToLower,
			"upper": strings.ToUpper,
			"xml":   escapeXML,
		},
		cache: make(map[string]*template.Template),
	}
}

// Render renders the named template
func (r *Renderer) Render(name string, data Data) ([]byte, error) {
	tmpl, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", name, err)
	}
	return buf.Bytes(), nil
}

// escapeXML escapes text for use in XML character data
func escapeXML(text string) string {
	var buf strings.Builder
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.String()
}

func (r *Renderer) lookup(name string) (*template.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	content, err := files.ReadFile("files/" + name + ".tmpl")
	if err != nil {
		return nil, fmt.Errorf("unknown template '%s': %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(r.funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}
