package aggregator

import (
	"testing"

	"github.com/petrarca/delphi-migrator/internal/rules"
	"github.com/petrarca/delphi-migrator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(name string, uses ...string) *types.LegacyUnit {
	return &types.LegacyUnit{Name: name, UsesClause: uses}
}

func newModel() *types.ProjectModel {
	model := types.NewProjectModel()
	main := unit("Main", "Windows", "Forms", "DataMod")
	data := unit("DataMod", "SysUtils", "ADODB", "DB")
	model.Units.Set("Main", main)
	model.Units.Set("DataMod", data)
	model.Forms.Set("Main", main)
	model.DataModules.Set("DataMod", data)
	model.Units.Set(types.ProjectUnitKey, &types.LegacyUnit{
		Name:       "App",
		UsesClause: []string{"Forms", "Main", "DataMod"},
		Project:    &types.ProjectInfo{ProjectName: "App"},
	})
	return model
}

func TestSummarize(t *testing.T) {
	techRules, err := rules.LoadEmbeddedRules()
	require.NoError(t, err)

	model := newModel()
	model.Summary.Framework = "VCL"
	model.Summary.Packages = []string{"rtl", "FireDAC"}

	summary := NewAggregator(techRules).Summarize(model)

	assert.Equal(t, 3, summary.TotalUnits)
	assert.Equal(t, 1, summary.TotalForms)
	assert.Equal(t, 1, summary.TotalDataModules)
	assert.True(t, summary.HasDatabase)
	assert.Equal(t, "VCL", summary.Framework)
	assert.Equal(t, []string{"ADO", "FireDAC"}, summary.MainTechnologies)
	assert.Equal(t, []string{"ADODB"}, summary.Reasons["ADO"])
	assert.Equal(t, []string{"FireDAC"}, summary.Reasons["FireDAC"])
	assert.Equal(t, []string{"ADODB", "DB", "Forms", "SysUtils", "Windows"}, summary.ExternalUnits)
}

func TestSummarizeEmptyModel(t *testing.T) {
	summary := NewAggregator(nil).Summarize(types.NewProjectModel())

	assert.Zero(t, summary.TotalUnits)
	assert.False(t, summary.HasDatabase)
	assert.NotNil(t, summary.MainTechnologies)
	assert.Empty(t, summary.MainTechnologies)
	assert.Nil(t, summary.Reasons)
	assert.Empty(t, summary.ExternalUnits)
}

func TestUsedUnits(t *testing.T) {
	agg := NewAggregator(nil)
	assert.Equal(t, []string{"ADODB", "DB", "DataMod", "Forms", "Main", "SysUtils", "Windows"}, agg.UsedUnits(newModel()))
}
