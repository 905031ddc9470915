package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Embedded schema names
const (
	BundleSchema        = "bundle.json"
	ProjectConfigSchema = "delphi-migrator-yml.json"
)

//go:embed *.json
var schemaFS embed.FS

// ValidationError represents a schema validation error
type ValidationError struct {
	Errors []string
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ValidateJSON validates a decoded data structure against an embedded JSON schema.
// data must be made of JSON compatible values (maps, slices, strings, numbers, bools).
func ValidateJSON(schemaName string, data interface{}) error {
	schemaData, err := schemaFS.ReadFile(schemaName)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	schema, err := jsonschema.CompileString(schemaName, string(schemaData))
	if err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", schemaName, err)
	}

	if err := schema.Validate(data); err != nil {
		var validationErrors []string
		var schemaErr *jsonschema.ValidationError
		if errors.As(err, &schemaErr) {
			for _, cause := range schemaErr.Causes {
				validationErrors = append(validationErrors, describe(cause))
			}
			if len(validationErrors) == 0 {
				validationErrors = append(validationErrors, schemaErr.Message)
			}
		} else {
			validationErrors = append(validationErrors, err.Error())
		}
		return ValidationError{Errors: validationErrors}
	}

	return nil
}

// describe prefixes a schema error with the location of the offending value
func describe(err *jsonschema.ValidationError) string {
	if err.InstanceLocation == "" {
		return err.Message
	}
	return fmt.Sprintf("%s: %s", err.InstanceLocation, err.Message)
}

// ValidateJSONBytes validates raw JSON content against an embedded JSON schema
func ValidateJSONBytes(schemaName string, content []byte) error {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return ValidateJSON(schemaName, data)
}

// ValidateYAML validates YAML content against an embedded JSON schema
func ValidateYAML(schemaName string, yamlContent []byte) error {
	var data interface{}
	if err := yaml.Unmarshal(yamlContent, &data); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return ValidateJSON(schemaName, data)
}

// ListAvailableSchemas returns a list of available schema filenames
func ListAvailableSchemas() ([]string, error) {
	entries, err := schemaFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}

	var schemas []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			schemas = append(schemas, entry.Name())
		}
	}

	return schemas, nil
}
