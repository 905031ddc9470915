// Package codestats counts lines, comments, blanks and complexity of the legacy
// sources, per Delphi file role and per language
package codestats

import (
	"bytes"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/scc/v3/processor"
	"github.com/go-enry/go-enry/v2"

	"github.com/petrarca/delphi-migrator/internal/parsers"
	"github.com/petrarca/delphi-migrator/internal/scanner"
)

// Stats are the counts of a group of files
type Stats struct {
	Lines      int64 `json:"lines" yaml:"lines"`
	Code       int64 `json:"code" yaml:"code"`
	Comments   int64 `json:"comments" yaml:"comments"`
	Blanks     int64 `json:"blanks" yaml:"blanks"`
	Complexity int64 `json:"complexity" yaml:"complexity"`
	Files      int   `json:"files" yaml:"files"`
}

// RoleStats are the counts of one file role (pas, dfm, dpr, ...)
type RoleStats struct {
	Role  string `json:"role" yaml:"role"`
	Stats `yaml:",inline"`
}

// LanguageStats are the counts of one language
type LanguageStats struct {
	Language string `json:"language" yaml:"language"`
	Stats    `yaml:",inline"`
}

// Metrics are ratios derived from the Pascal code (units, programs, packages
// and include files)
type Metrics struct {
	CommentRatio      float64 `json:"comment_ratio" yaml:"comment_ratio"`             // comments / code
	CodeDensity       float64 `json:"code_density" yaml:"code_density"`               // code / lines
	AvgUnitSize       float64 `json:"avg_unit_size" yaml:"avg_unit_size"`             // lines / files
	ComplexityPerKLOC float64 `json:"complexity_per_kloc" yaml:"complexity_per_kloc"` // complexity / (code / 1000)
	FormShare         float64 `json:"form_share" yaml:"form_share"`                   // dfm lines / all lines
}

// CodeStats holds the aggregated statistics of a project
type CodeStats struct {
	Total      Stats           `json:"total" yaml:"total"`
	ByRole     []RoleStats     `json:"by_role" yaml:"by_role"`         // in role processing order
	ByLanguage []LanguageStats `json:"by_language" yaml:"by_language"` // lines descending
	Metrics    Metrics         `json:"metrics" yaml:"metrics"`
}

// Analyzer collects code statistics for the files of a legacy project
type Analyzer interface {
	// ProcessFile adds the stats of one file. An empty language is detected
	// with go-enry; nil content means the file is read from disk.
	ProcessFile(filename string, language string, content []byte)

	// GetStats returns the aggregated statistics, nil when disabled
	GetStats() *CodeStats

	IsEnabled() bool
}

// NewAnalyzer creates an analyzer based on enabled flag
func NewAnalyzer(enabled bool) Analyzer {
	if enabled {
		return newSCCAnalyzer()
	}
	return &noopAnalyzer{}
}

type noopAnalyzer struct{}

func (n *noopAnalyzer) ProcessFile(filename string, language string, content []byte) {}
func (n *noopAnalyzer) GetStats() *CodeStats                                         { return nil }
func (n *noopAnalyzer) IsEnabled() bool                                              { return false }

// sccAnalyzer uses boyter/scc for code statistics
type sccAnalyzer struct {
	mu         sync.Mutex
	total      Stats
	byRole     map[string]*Stats
	byLanguage map[string]*Stats
}

func newSCCAnalyzer() *sccAnalyzer {
	return &sccAnalyzer{
		byRole:     make(map[string]*Stats),
		byLanguage: make(map[string]*Stats),
	}
}

func (a *sccAnalyzer) IsEnabled() bool {
	return true
}

// DetectLanguage returns the go-enry language of a file. Delphi form and
// project files are reported as Pascal.
func DetectLanguage(filename string, content []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pas", ".dpr", ".dpk", ".dfm", ".inc", ".lpr":
		return "Pascal"
	case ".dproj", ".groupproj":
		return "XML"
	}
	return enry.GetLanguage(filepath.Base(filename), content)
}

func (a *sccAnalyzer) GetStats() *CodeStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	stats := &CodeStats{
		Total:      a.total,
		ByRole:     []RoleStats{},
		ByLanguage: make([]LanguageStats, 0, len(a.byLanguage)),
	}
	for _, role := range parsers.KnownRoles {
		if s, ok := a.byRole[role]; ok {
			stats.ByRole = append(stats.ByRole, RoleStats{Role: role, Stats: *s})
		}
	}
	if s, ok := a.byRole[""]; ok {
		stats.ByRole = append(stats.ByRole, RoleStats{Role: "other", Stats: *s})
	}
	for language, s := range a.byLanguage {
		stats.ByLanguage = append(stats.ByLanguage, LanguageStats{Language: language, Stats: *s})
	}
	slices.SortFunc(stats.ByLanguage, func(x, y LanguageStats) int {
		if x.Lines != y.Lines {
			if x.Lines > y.Lines {
				return -1
			}
			return 1
		}
		return strings.Compare(x.Language, y.Language)
	})
	stats.Metrics = a.metrics()
	return stats
}

// metrics derives the ratios from the Pascal code roles (caller must hold mutex)
func (a *sccAnalyzer) metrics() Metrics {
	var code Stats
	for _, role := range []string{parsers.RolePas, parsers.RoleDpr, parsers.RoleDpk, parsers.RoleInc} {
		if s, ok := a.byRole[role]; ok {
			code.add(*s)
		}
	}

	var m Metrics
	if code.Code > 0 {
		m.CommentRatio = round2(float64(code.Comments) / float64(code.Code))
		m.ComplexityPerKLOC = round2(float64(code.Complexity) / (float64(code.Code) / 1000))
	}
	if code.Lines > 0 {
		m.CodeDensity = round2(float64(code.Code) / float64(code.Lines))
	}
	if code.Files > 0 {
		m.AvgUnitSize = round2(float64(code.Lines) / float64(code.Files))
	}
	if forms, ok := a.byRole[parsers.RoleDfm]; ok && a.total.Lines > 0 {
		m.FormShare = round2(float64(forms.Lines) / float64(a.total.Lines))
	}
	return m
}

func (s *Stats) add(other Stats) {
	s.Lines += other.Lines
	s.Code += other.Code
	s.Comments += other.Comments
	s.Blanks += other.Blanks
	s.Complexity += other.Complexity
	s.Files += other.Files
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// countFile runs scc over one file. Files scc has no definition for get a
// plain line count where every non-blank line is code.
func countFile(filename string, content []byte) (Stats, bool) {
	if len(content) == 0 {
		return Stats{}, false
	}

	initOnce.Do(func() {
		processor.ProcessConstants()
	})

	sccLang := ""
	if sccLangs, _ := processor.DetectLanguage(filepath.Base(filename)); len(sccLangs) > 0 {
		sccLang = sccLangs[0]
	}
	if sccLang == "" {
		return plainCount(content), true
	}

	filejob := &processor.FileJob{
		Filename: filename,
		Language: sccLang,
		Content:  content,
		Bytes:    int64(len(content)),
	}
	processor.CountStats(filejob)
	return Stats{
		Lines:      filejob.Lines,
		Code:       filejob.Code,
		Comments:   filejob.Comment,
		Blanks:     filejob.Blank,
		Complexity: filejob.Complexity,
		Files:      1,
	}, true
}

func plainCount(content []byte) Stats {
	stats := Stats{Files: 1}
	for line := range bytes.Lines(content) {
		stats.Lines++
		if len(bytes.TrimSpace(line)) == 0 {
			stats.Blanks++
		} else {
			stats.Code++
		}
	}
	return stats
}

// addUnsafe adds the counts of one file (caller must hold mutex)
func (a *sccAnalyzer) addUnsafe(filename, language string, stats Stats) {
	role, _ := scanner.RoleOf(filename)

	a.total.add(stats)
	if _, ok := a.byRole[role]; !ok {
		a.byRole[role] = &Stats{}
	}
	a.byRole[role].add(stats)
	if _, ok := a.byLanguage[language]; !ok {
		a.byLanguage[language] = &Stats{}
	}
	a.byLanguage[language].add(stats)
}
