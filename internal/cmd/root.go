package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrarca/delphi-migrator/internal/config"
	"github.com/petrarca/delphi-migrator/internal/output"
)

// Version of the command line tool
const Version = "1.0.0"

// settings holds defaults, .env and environment values. Command flags bind
// to its fields from init functions.
var settings = config.LoadSettings()

var rootCmd = &cobra.Command{
	Use:   "delphi-migrator",
	Short: "Delphi to Spring Boot migration toolkit",
	Long: `delphi-migrator extracts the structure of a Delphi project (units, forms,
data modules, SQL, event handlers, data access technologies) and materializes
generated Java code into a buildable Spring Boot Maven project.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Stderr().Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&settings.Verbose, "verbose", "v", settings.Verbose, "Show progress on stderr")
	flags.String("log-level", settings.LogLevel.String(), "Log level: debug, info, warn, error")
	flags.String("log-format", settings.LogFormat, "Log format: text or json")
	flags.String("log-file", settings.LogFile, "Log file path (default: stderr)")
}

// configureLogging applies the logging flags and validates the settings
func configureLogging(cmd *cobra.Command) (*slog.Logger, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	logFile, _ := cmd.Flags().GetString("log-file")

	level, err := config.ParseLogLevel(logLevel)
	if err != nil {
		return nil, err
	}
	settings.LogLevel = level
	settings.LogFormat = logFormat
	settings.LogFile = logFile

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings.ConfigureLogger(), nil
}
