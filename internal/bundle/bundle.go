// Package bundle loads generated code bundles from JSON or YAML files.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/petrarca/delphi-migrator/internal/validation"
)

// Load reads a bundle file. The format follows the extension: .yaml and .yml
// are YAML, everything else is JSON.
func Load(path string) (types.GeneratedCodeBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.GeneratedCodeBundle{}, fmt.Errorf("failed to read bundle: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON validates and decodes a JSON bundle
func ParseJSON(data []byte) (types.GeneratedCodeBundle, error) {
	if err := validation.ValidateJSONBytes(validation.BundleSchema, data); err != nil {
		return types.GeneratedCodeBundle{}, fmt.Errorf("invalid bundle: %w", err)
	}

	var bundle types.GeneratedCodeBundle
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&bundle); err != nil {
		return types.GeneratedCodeBundle{}, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return bundle, nil
}

// ParseYAML validates and decodes a YAML bundle
func ParseYAML(data []byte) (types.GeneratedCodeBundle, error) {
	if err := validation.ValidateYAML(validation.BundleSchema, data); err != nil {
		return types.GeneratedCodeBundle{}, fmt.Errorf("invalid bundle: %w", err)
	}

	var bundle types.GeneratedCodeBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return types.GeneratedCodeBundle{}, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return bundle, nil
}
