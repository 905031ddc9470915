package util

import (
	"testing"
)

func TestValidateOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"valid text", "text", false},
		{"valid json", "json", false},
		{"valid yaml", "yaml", false},
		{"valid uppercase", "JSON", false},
		{"valid mixed case", "Yaml", false},
		{"invalid format", "xml", true},
		{"empty format", "", true},
		{"invalid format", "csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected string
	}{
		{"lowercase", "text", "text"},
		{"uppercase", "JSON", "json"},
		{"mixed case", "Yaml", "yaml"},
		{"already lowercase", "yaml", "yaml"},
		{"surrounding spaces", " text ", "text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeFormat(tt.format)
			if result != tt.expected {
				t.Errorf("NormalizeFormat() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetValidFormats(t *testing.T) {
	formats := GetValidFormats()
	expected := []string{"json", "yaml", "text"}

	if len(formats) != len(expected) {
		t.Errorf("GetValidFormats() returned %d formats, expected %d", len(formats), len(expected))
	}

	for i, format := range formats {
		if format != expected[i] {
			t.Errorf("GetValidFormats()[%d] = %s, want %s", i, format, expected[i])
		}
	}

	formats[0] = "xml"
	if GetValidFormats()[0] != "json" {
		t.Error("GetValidFormats() must return a copy")
	}
}
