package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	result := &layoutResult{Structure: map[string]string{"base": "/app", "package_name": "com.x"}}

	tests := []struct {
		name     string
		format   string
		pretty   bool
		expected string
	}{
		{"compact json", "json", false, `{"base":"/app","package_name":"com.x"}` + "\n"},
		{"pretty json", "JSON", true, "{\n  \"base\": \"/app\",\n  \"package_name\": \"com.x\"\n}\n"},
		{"yaml", "yaml", false, "base: /app\npackage_name: com.x\n"},
		{"text", "text", false, "base                 /app\npackage_name         com.x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(result, tt.format, tt.pretty)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, OutputToFile(&layoutResult{Structure: map[string]string{"base": "/app"}}, "json", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"base": "/app"`)
}

func TestInfoResult(t *testing.T) {
	result, err := buildInfoResult("")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Technologies)
	assert.Contains(t, result.FileRoles, "dproj")
	assert.Contains(t, result.DatabaseComponentTypes, "TADOQuery")

	result.ToText(io.Discard)
	out, err := Render(result, "text", false)
	require.NoError(t, err)
	assert.Contains(t, string(out), "*Controller*")
	assert.Contains(t, string(out), "import org.springframework.http.ResponseEntity;")
}
