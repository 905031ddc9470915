package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petrarca/delphi-migrator/internal/output"
	"github.com/petrarca/delphi-migrator/internal/util"
)

// Outputter interface for commands with structured output
type Outputter interface {
	// ToJSON returns the data structure for JSON/YAML marshaling
	ToJSON() interface{}
	// ToText writes human-readable text format
	ToText(w io.Writer)
}

// Render formats o as json, yaml or text
func Render(o Outputter, format string, pretty bool) ([]byte, error) {
	switch util.NormalizeFormat(format) {
	case "json":
		var data []byte
		var err error
		if pretty {
			data, err = json.MarshalIndent(o.ToJSON(), "", "  ")
		} else {
			data, err = json.Marshal(o.ToJSON())
		}
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(o.ToJSON())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	default: // text
		var buf bytes.Buffer
		o.ToText(&buf)
		return buf.Bytes(), nil
	}
}

// OutputToFile writes o to outputFile, or stdout when empty or "-"
func OutputToFile(o Outputter, format string, outputFile string) error {
	data, err := Render(o, format, settings.PrettyPrint)
	if err != nil {
		return err
	}

	if outputFile == "" || outputFile == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	output.Stderr().Success(fmt.Sprintf("Results written to %s", outputFile))
	return nil
}

// setupFormatFlag configures format flag and validation for a command
func setupFormatFlag(cmd *cobra.Command, formatPtr *string) {
	cmd.Flags().StringVarP(formatPtr, "format", "f", *formatPtr, "Output format: json, yaml, or text")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		*formatPtr = util.NormalizeFormat(*formatPtr)
		return util.ValidateOutputFormat(*formatPtr)
	}
}

// setupOutputFlags configures both format and output flags for a command
func setupOutputFlags(cmd *cobra.Command, formatPtr *string, outputPtr *string) {
	setupFormatFlag(cmd, formatPtr)
	cmd.Flags().StringVarP(outputPtr, "output", "o", *outputPtr, "Output file path (default: stdout)")
}
