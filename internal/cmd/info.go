package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petrarca/delphi-migrator/internal/builder"
	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/rules"
)

var (
	infoFormat string
	infoOutput string
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display the extraction and materialization tables",
	Long: `Display the technology rules, the recognized database, data-aware and
event handler names, the file roles and the imports added to Java files.`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoFormat = "text"
	setupOutputFlags(infoCmd, &infoFormat, &infoOutput)
	infoCmd.Flags().StringVar(&settings.RulesDir, "rules", settings.RulesDir, "Directory with additional technology rules (YAML)")
}

// InfoResult is the output for the info command
type InfoResult struct {
	Technologies            []rules.TechnologyRule `json:"technologies" yaml:"technologies"`
	FileRoles               []string               `json:"file_roles" yaml:"file_roles"`
	DatabaseComponentTypes  []string               `json:"database_component_types" yaml:"database_component_types"`
	DataAwareComponentTypes []string               `json:"data_aware_component_types" yaml:"data_aware_component_types"`
	EventHandlerSuffixes    []string               `json:"event_handler_suffixes" yaml:"event_handler_suffixes"`
	RoleImports             []builder.RoleImport   `json:"role_imports" yaml:"role_imports"`
	EssentialStarters       []string               `json:"essential_starters" yaml:"essential_starters"`
}

func (r *InfoResult) ToJSON() interface{} {
	return r
}

func (r *InfoResult) ToText(w io.Writer) {
	fmt.Fprintln(w, "Technologies:")
	for _, tech := range r.Technologies {
		fmt.Fprintf(w, "  %-12s %-28s markers: %s\n", tech.Tech, tech.Name, strings.Join(tech.Markers, ", "))
	}
	fmt.Fprintf(w, "\nFile roles: %s\n", strings.Join(r.FileRoles, ", "))
	fmt.Fprintf(w, "Database components: %s\n", strings.Join(r.DatabaseComponentTypes, ", "))
	fmt.Fprintf(w, "Data-aware components: %s\n", strings.Join(r.DataAwareComponentTypes, ", "))
	fmt.Fprintf(w, "Event handler suffixes: %s\n", strings.Join(r.EventHandlerSuffixes, ", "))

	fmt.Fprintln(w, "\nJava imports by file name:")
	for _, role := range r.RoleImports {
		fmt.Fprintf(w, "  *%s*\n", role.Role)
		for _, imp := range role.Imports {
			fmt.Fprintf(w, "    import %s;\n", imp)
		}
	}
	fmt.Fprintf(w, "\nEssential starters: %s\n", strings.Join(r.EssentialStarters, ", "))
}

func buildInfoResult(rulesDir string) (*InfoResult, error) {
	techRules, err := loadRules(rulesDir)
	if err != nil {
		return nil, err
	}
	return &InfoResult{
		Technologies:            techRules,
		FileRoles:               parsers.KnownRoles,
		DatabaseComponentTypes:  parsers.DatabaseComponentTypes,
		DataAwareComponentTypes: parsers.DataAwareComponentTypes,
		EventHandlerSuffixes:    parsers.EventHandlerSuffixes,
		RoleImports:             builder.RoleImports,
		EssentialStarters:       parsers.EssentialStarters,
	}, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if _, err := configureLogging(cmd); err != nil {
		return err
	}
	result, err := buildInfoResult(settings.RulesDir)
	if err != nil {
		return err
	}
	return OutputToFile(result, infoFormat, infoOutput)
}
