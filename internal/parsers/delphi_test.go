package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDproj(t *testing.T) {
	parser := NewDelphiParser()

	tests := []struct {
		name     string
		content  string
		path     string
		expected DelphiProject
	}{
		{
			name: "VCL project with packages",
			content: `<Project xmlns="http://schemas.microsoft.com/developer/msbuild/2003">
	<PropertyGroup>
		<MainSource>Sales.dpr</MainSource>
		<FrameworkType>VCL</FrameworkType>
		<DCC_UsePackage>vcl;rtl;dbrtl;adortl;$(DCC_UsePackage)</DCC_UsePackage>
	</PropertyGroup>
	<PropertyGroup Condition="'$(Base_Win32)'!=''">
		<DCC_UsePackage>vcl;FireDAC;$(DCC_UsePackage)</DCC_UsePackage>
	</PropertyGroup>
</Project>`,
			path: "legacy/Sales.dproj",
			expected: DelphiProject{
				Name:       "Sales",
				Framework:  "VCL",
				MainSource: "Sales.dpr",
				Packages:   []string{"vcl", "rtl", "dbrtl", "adortl", "FireDAC"},
			},
		},
		{
			name: "FMX project",
			content: `<Project>
	<PropertyGroup>
		<FrameworkType> FMX </FrameworkType>
	</PropertyGroup>
</Project>`,
			path: "FMXApp.dproj",
			expected: DelphiProject{
				Name:      "FMXApp",
				Framework: "FMX",
				Packages:  []string{},
			},
		},
		{
			name:     "empty project file",
			content:  `<Project></Project>`,
			path:     "Empty.dproj",
			expected: DelphiProject{Name: "Empty", Packages: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parser.ParseDproj(tt.content, tt.path))
		})
	}
}

func TestFrameworkHelpers(t *testing.T) {
	parser := NewDelphiParser()

	assert.True(t, parser.IsVCL("vcl"))
	assert.False(t, parser.IsVCL("FMX"))
	assert.True(t, parser.IsFMX("FMX"))
	assert.False(t, parser.IsFMX(""))
}
