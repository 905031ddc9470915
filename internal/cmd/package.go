package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrarca/delphi-migrator/internal/output"
	"github.com/petrarca/delphi-migrator/internal/workspace"
)

var packageZip string

var packageCmd = &cobra.Command{
	Use:   "package <dir>",
	Short: "Package a directory into a reproducible zip archive",
	Long: `Package archives a directory, typically a materialized project. Entries are
sorted and carry fixed timestamps so the same tree always gives the same
archive.

Example:
  delphi-migrator package ./sales-service --zip sales-service.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runPackage,
}

func init() {
	rootCmd.AddCommand(packageCmd)

	packageCmd.Flags().StringVar(&packageZip, "zip", "", "Zip file to create (required)")
	_ = packageCmd.MarkFlagRequired("zip")
}

func runPackage(cmd *cobra.Command, args []string) error {
	logger, err := configureLogging(cmd)
	if err != nil {
		return err
	}

	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", args[0])
	}

	if err := workspace.CreateZip(args[0], packageZip); err != nil {
		return err
	}
	logger.Info("project packaged", "dir", args[0], "zip", packageZip)
	output.Stderr().Success(fmt.Sprintf("Archive written to %s", packageZip))
	return nil
}
