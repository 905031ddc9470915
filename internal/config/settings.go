package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "DELPHI_MIGRATOR_"

var javaPackageRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Settings holds the command line configuration
type Settings struct {
	// Output settings
	OutputFile  string // Empty = stdout
	Format      string // json, yaml or text
	PrettyPrint bool

	// Analysis behavior
	ExcludePatterns []string
	Verbose         bool
	NoCodeStats     bool   // Disable code statistics (enabled by default)
	RulesDir        string // Additional technology rules

	// Materialization defaults, used when a bundle leaves them empty
	PackageName string
	ProjectName string

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // Optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration
func DefaultSettings() *Settings {
	return &Settings{
		OutputFile:      "",
		Format:          "json",
		PrettyPrint:     true,
		ExcludePatterns: []string{},
		Verbose:         false,
		NoCodeStats:     false,
		RulesDir:        "",
		PackageName:     "",
		ProjectName:     "",
		LogLevel:        slog.LevelError, // only errors by default
		LogFormat:       "text",
		LogFile:         "", // Empty = stderr
	}
}

// LoadSettings creates settings from defaults, an optional .env file in the
// working directory and environment variable overrides
func LoadSettings() *Settings {
	// Missing .env is the normal case; existing variables are never overridden
	_ = godotenv.Load()

	settings := DefaultSettings()

	if outputFile := getenv("OUTPUT"); outputFile != "" {
		settings.OutputFile = outputFile
	}

	if format := getenv("FORMAT"); format != "" {
		settings.Format = strings.ToLower(format)
	}

	if pretty := getenv("PRETTY"); pretty != "" {
		settings.PrettyPrint = strings.ToLower(pretty) == "true"
	}

	if excludePatterns := getenv("EXCLUDE_DIRS"); excludePatterns != "" {
		settings.ExcludePatterns = splitList(excludePatterns)
	}

	if verbose := getenv("VERBOSE"); verbose != "" {
		settings.Verbose = strings.ToLower(verbose) == "true"
	}

	if noCodeStats := getenv("NO_CODE_STATS"); noCodeStats != "" {
		settings.NoCodeStats = strings.ToLower(noCodeStats) == "true"
	}

	if rulesDir := getenv("RULES_DIR"); rulesDir != "" {
		settings.RulesDir = rulesDir
	}

	if packageName := getenv("PACKAGE_NAME"); packageName != "" {
		settings.PackageName = packageName
	}

	if projectName := getenv("PROJECT_NAME"); projectName != "" {
		settings.ProjectName = projectName
	}

	// Logging settings
	if logLevel := getenv("LOG_LEVEL"); logLevel != "" {
		if level, err := ParseLogLevel(logLevel); err == nil {
			settings.LogLevel = level
		}
	}

	if logFormat := getenv("LOG_FORMAT"); logFormat != "" {
		settings.LogFormat = logFormat
	}

	if logFile := getenv("LOG_FILE"); logFile != "" {
		settings.LogFile = logFile
	}

	return settings
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}

// splitList splits a comma separated value, dropping empty entries
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseLogLevel converts string log level to slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ConfigureLogger builds the logger handed to every component
func (s *Settings) ConfigureLogger() *slog.Logger {
	var handler slog.Handler

	var output io.Writer = os.Stderr
	if s.LogFile != "" {
		file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Fallback to stderr if file can't be opened
			fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
		} else {
			output = file
		}
	}

	opts := &slog.HandlerOptions{
		Level: s.LogLevel,
	}

	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}

// Validate checks if settings are valid
func (s *Settings) Validate() error {
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (supported: text, json)", s.LogFormat)
	}
	if s.PackageName != "" && !IsValidPackageName(s.PackageName) {
		return fmt.Errorf("invalid package name %q", s.PackageName)
	}
	return nil
}

// IsValidPackageName reports whether name is a dotted Java package name
func IsValidPackageName(name string) bool {
	return javaPackageRegex.MatchString(name)
}
