package util

import (
	"fmt"
	"slices"
	"strings"
)

// ValidOutputFormats lists the supported output formats
var ValidOutputFormats = []string{"json", "yaml", "text"}

// ValidateOutputFormat checks if the given format is valid
func ValidateOutputFormat(format string) error {
	if !slices.Contains(ValidOutputFormats, NormalizeFormat(format)) {
		return fmt.Errorf("invalid format: %s. Valid formats are: %s", format, strings.Join(ValidOutputFormats, ", "))
	}
	return nil
}

// GetValidFormats returns a copy of the valid output formats
func GetValidFormats() []string {
	return slices.Clone(ValidOutputFormats)
}

// NormalizeFormat normalizes the format string to lowercase
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimSpace(format))
}
