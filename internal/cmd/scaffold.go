package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petrarca/delphi-migrator/internal/config"
	"github.com/petrarca/delphi-migrator/internal/output"
	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/petrarca/delphi-migrator/internal/workspace"
)

var scaffoldPackage string

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <dir>",
	Short: "Create an empty Spring Boot directory skeleton",
	Long: `Scaffold creates the standard directory tree of a Spring Boot project
(controller, service, repository, model, config, resources, static,
templates and test directories) and prints the resulting layout.

Example:
  delphi-migrator scaffold ./sales-service --package com.acme.sales`,
	Args: cobra.ExactArgs(1),
	RunE: runScaffold,
}

func init() {
	rootCmd.AddCommand(scaffoldCmd)

	setupFormatFlag(scaffoldCmd, &settings.Format)
	scaffoldCmd.Flags().StringVar(&scaffoldPackage, "package", types.DefaultPackageName, "Java base package")
}

// layoutResult is the output of the scaffold command
type layoutResult struct {
	Structure map[string]string
}

func (r *layoutResult) ToJSON() interface{} {
	return r.Structure
}

func (r *layoutResult) ToText(w io.Writer) {
	for _, key := range sortedKeys(r.Structure) {
		fmt.Fprintf(w, "%-20s %s\n", key, r.Structure[key])
	}
}

func runScaffold(cmd *cobra.Command, args []string) error {
	logger, err := configureLogging(cmd)
	if err != nil {
		return err
	}
	if !config.IsValidPackageName(scaffoldPackage) {
		return fmt.Errorf("invalid package name %q", scaffoldPackage)
	}

	base, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}

	layout, err := workspace.CreateJavaSkeleton(base, scaffoldPackage)
	if err != nil {
		return err
	}
	logger.Info("java skeleton created", "base", base, "package", scaffoldPackage)
	output.Stderr().Success(fmt.Sprintf("Skeleton created in %s", base))

	return OutputToFile(&layoutResult{Structure: layout.Structure()}, settings.Format, "")
}
