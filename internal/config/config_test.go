package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := LoadProjectConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
	assert.Equal(t, DefaultSpringBootVersion, cfg.SpringBoot())
	assert.Equal(t, DefaultJavaVersion, cfg.Java())
}

func TestLoadProjectConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectConfigFile), []byte(`
exclude:
  - "__history"
  - "Tests/**"
package_name: com.acme.sales
project_name: sales
spring_boot_version: 3.3.1
java_version: 21
`), 0644))

	cfg, err := LoadProjectConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"__history", "Tests/**"}, cfg.Exclude)
	assert.Equal(t, "com.acme.sales", cfg.PackageName)
	assert.Equal(t, "sales", cfg.ProjectName)
	assert.Equal(t, "3.3.1", cfg.SpringBoot())
	assert.Equal(t, "21", cfg.Java())
}

func TestParseProjectConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		expect string
	}{
		{name: "schema violation", yaml: "unknown: 1", expect: "validation failed"},
		{name: "release suffix is not semver", yaml: "spring_boot_version: 2.7.0.RELEASE", expect: "not a semantic version"},
		{name: "java version string", yaml: `java_version: "seventeen"`, expect: "validation failed"},
		{name: "broken yaml", yaml: "exclude: [", expect: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProjectConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}

func TestParseProjectConfig_Empty(t *testing.T) {
	cfg, err := ParseProjectConfig([]byte("\n# nothing yet\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Exclude)
}

func TestMergeExcludes(t *testing.T) {
	cfg := &ProjectConfig{Exclude: []string{"__history", "Tests/**"}}

	assert.Equal(t, []string{"__history", "Tests/**", "backup"}, cfg.MergeExcludes([]string{"Tests/**", "backup"}))

	var nilCfg *ProjectConfig
	assert.Equal(t, []string{"x"}, nilCfg.MergeExcludes([]string{"x"}))
}
