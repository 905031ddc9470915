package metadata

import (
	"path/filepath"
	"time"
)

// FormatVersion is the version of the ProjectModel output structure.
// Bump it on breaking changes of the JSON/YAML layout.
const FormatVersion = "1.0"

// AnalysisMetadata describes one analysis run
type AnalysisMetadata struct {
	Timestamp     string                 `json:"timestamp" yaml:"timestamp"`
	SourcePath    string                 `json:"source_path" yaml:"source_path"`
	FormatVersion string                 `json:"format_version" yaml:"format_version"`
	DurationMs    int64                  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	FileCount     int                    `json:"file_count,omitempty" yaml:"file_count,omitempty"`
	RoleCounts    map[string]int         `json:"role_counts,omitempty" yaml:"role_counts,omitempty"`
	Properties    map[string]interface{} `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewAnalysisMetadata creates metadata for an analysis of sourcePath
func NewAnalysisMetadata(sourcePath string) *AnalysisMetadata {
	absPath, err := filepath.Abs(sourcePath)
	if err != nil {
		absPath = sourcePath
	}

	return &AnalysisMetadata{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		SourcePath:    absPath,
		FormatVersion: FormatVersion,
	}
}

// SetDuration sets the analysis duration in milliseconds
func (m *AnalysisMetadata) SetDuration(duration time.Duration) {
	m.DurationMs = duration.Milliseconds()
}

// SetFileCounts records the number of located files per role
func (m *AnalysisMetadata) SetFileCounts(roleCounts map[string]int) {
	m.FileCount = 0
	m.RoleCounts = make(map[string]int, len(roleCounts))
	for role, count := range roleCounts {
		m.RoleCounts[role] = count
		m.FileCount += count
	}
}

// SetProperties sets custom properties from configuration
func (m *AnalysisMetadata) SetProperties(properties map[string]interface{}) {
	if len(properties) > 0 {
		m.Properties = properties
	}
}
