package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestRoleOf(t *testing.T) {
	tests := []struct {
		name     string
		wantRole string
		wantOK   bool
	}{
		{"Main.pas", parsers.RolePas, true},
		{"MAIN.PAS", parsers.RolePas, true},
		{"Main.dfm", parsers.RoleDfm, true},
		{"App.dpr", parsers.RoleDpr, true},
		{"Pkg.dpk", parsers.RoleDpk, true},
		{"defines.inc", parsers.RoleInc, true},
		{"App.dproj", parsers.RoleDproj, true},
		{"App.res", "", false},
		{"readme", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := RoleOf(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestLocate_EmptyDirectory(t *testing.T) {
	fileSet, err := Locate(t.TempDir(), nil, nil)
	require.NoError(t, err)

	assert.Len(t, fileSet, len(parsers.KnownRoles))
	for _, role := range parsers.KnownRoles {
		files, ok := fileSet[role]
		assert.True(t, ok, "role %s should be present", role)
		assert.NotNil(t, files)
		assert.Empty(t, files)
	}
}

func TestLocate_ClassifiesByRole(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"App.dpr":           "program App;",
		"App.dproj":         "<Project/>",
		"src/Main.pas":      "unit Main;",
		"src/Main.dfm":      "object MainForm: TMainForm\nend",
		"src/Data.pas":      "unit Data;",
		"src/inc/defs.inc":  "{$DEFINE X}",
		"src/App.res":       "binary",
		"docs/notes.txt":    "notes",
		"packages/Pkg.dpk":  "package Pkg;",
		"src/Zeta/Last.pas": "unit Last;",
	})

	fileSet, err := Locate(root, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/Data.pas", "src/Main.pas", "src/Zeta/Last.pas"}, fileSet[parsers.RolePas])
	assert.Equal(t, []string{"src/Main.dfm"}, fileSet[parsers.RoleDfm])
	assert.Equal(t, []string{"App.dpr"}, fileSet[parsers.RoleDpr])
	assert.Equal(t, []string{"packages/Pkg.dpk"}, fileSet[parsers.RoleDpk])
	assert.Equal(t, []string{"src/inc/defs.inc"}, fileSet[parsers.RoleInc])
	assert.Equal(t, []string{"App.dproj"}, fileSet[parsers.RoleDproj])
	assert.Equal(t, 8, fileSet.Count())
}

func TestLocate_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Main.pas":                    "unit Main;",
		"__history/Main.pas.~1~":      "old",
		"__history/Main.pas":          "unit Main;",
		"__recovery/Main.pas":         "unit Main;",
		".git/hooks/pre-commit.pas":   "unit Hook;",
		"node_modules/lib/Module.pas": "unit Module;",
	})

	fileSet, err := Locate(root, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Main.pas"}, fileSet[parsers.RolePas])
}

func TestLocate_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Main.pas":          "unit Main;",
		"backup/Main.pas":   "unit Main;",
		"src/Old_Form.pas":  "unit Old_Form;",
		"src/Keep.pas":      "unit Keep;",
		"tests/Test1.pas":   "unit Test1;",
		"tests/Test1.dfm":   "object T: TForm end",
		"deep/a/b/Skip.pas": "unit Skip;",
	})

	fileSet, err := Locate(root, []string{"backup", "Old_*.pas", "tests/**", "deep/**/Skip.pas"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Main.pas", "src/Keep.pas"}, fileSet[parsers.RolePas])
	assert.Empty(t, fileSet[parsers.RoleDfm])
}

func TestLocate_NestedGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":          "*.inc\n",
		"Main.pas":            "unit Main;",
		"defs.inc":            "{$DEFINE X}",
		"lib/.gitignore":      "Generated.pas\n",
		"lib/Generated.pas":   "unit Generated;",
		"lib/Tools.pas":       "unit Tools;",
		"other/Generated.pas": "unit Generated;",
	})

	fileSet, err := Locate(root, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, fileSet[parsers.RoleInc])
	assert.Equal(t, []string{"Main.pas", "lib/Tools.pas", "other/Generated.pas"}, fileSet[parsers.RolePas])
}

func TestNewScanner_InvalidPath(t *testing.T) {
	_, err := NewScanner(filepath.Join(t.TempDir(), "missing"), nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to access project directory")

	file := filepath.Join(t.TempDir(), "file.pas")
	require.NoError(t, os.WriteFile(file, []byte("unit X;"), 0o644))
	_, err = NewScanner(file, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestScanner_ReportsProgress(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Main.pas":        "unit Main;",
		"backup/Main.pas": "unit Main;",
	})

	buf := &bytes.Buffer{}
	s, err := NewScanner(root, []string{"backup"}, progress.New(true, progress.NewSimpleHandler(buf)), nil)
	require.NoError(t, err)

	_, err = s.Scan()
	require.NoError(t, err)

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, "[SCAN] Starting: "+root))
	assert.Contains(t, output, "[SKIP] Excluding: backup (excluded)")
	assert.Contains(t, output, "[SCAN] Completed: 1 files, 1 directories")
}
