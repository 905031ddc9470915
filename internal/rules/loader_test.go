package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedRules(t *testing.T) {
	rules, err := LoadEmbeddedRules()
	require.NoError(t, err)

	names := make([]string, 0, len(rules))
	for _, rule := range rules {
		names = append(names, rule.Name)
		assert.Equal(t, "dataaccess", rule.Type, rule.Tech)
		assert.NotEmpty(t, rule.Markers, rule.Tech)
	}
	assert.Equal(t, []string{"ADO", "BDE", "InterBase", "FireDAC", "dbExpress"}, names)
}

func TestMatch(t *testing.T) {
	rules, err := LoadEmbeddedRules()
	require.NoError(t, err)

	tests := []struct {
		name     string
		uses     []string
		expected []string
	}{
		{name: "nothing", uses: []string{"SysUtils", "Forms"}, expected: []string{}},
		{name: "ado unit", uses: []string{"ADODB"}, expected: []string{"ADO"}},
		{name: "ibx marks interbase", uses: []string{"IBX.IBDatabase"}, expected: []string{"InterBase"}},
		{
			name:     "rule order not input order",
			uses:     []string{"DBXpress", "FireDAC.Comp.Client", "BDE"},
			expected: []string{"BDE", "FireDAC", "dbExpress"},
		},
		{name: "case sensitive", uses: []string{"adodb", "firedac"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Match(rules, tt.uses))
		})
	}
}

func TestLoadExternalRulesAndMerge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "custom"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom", "unidac.yaml"), []byte(`tech: unidac
name: UniDAC
order: 60
markers: [Uni, DBAccess]
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom", "ado.yml"), []byte(`tech: ado
name: ADO (dbGo)
order: 10
markers: [ADO, dbGo]
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	extra, err := LoadExternalRules(dir)
	require.NoError(t, err)
	require.Len(t, extra, 2)
	assert.Equal(t, "custom", extra[0].Type)

	base, err := LoadEmbeddedRules()
	require.NoError(t, err)

	merged := Merge(base, extra)
	assert.Len(t, merged, len(base)+1)
	assert.Equal(t, []string{"ADO (dbGo)", "UniDAC"}, Match(merged, []string{"dbGo", "UniProvider"}))
}

func TestLoadExternalRulesInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("tech: bad\nname: Bad\n"), 0644))

	_, err := LoadExternalRules(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marker")
}

func TestMatchedBy(t *testing.T) {
	rule := TechnologyRule{Tech: "ado", Name: "ADO", Markers: []string{"ADO", "dbGo"}}

	assert.Equal(t, []string{"ADODB", "dbGoConn"},
		rule.MatchedBy([]string{"SysUtils", "ADODB", "dbGoConn", "ADODB", "ado"}))
	assert.Empty(t, rule.MatchedBy(nil))
}
