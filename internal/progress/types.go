package progress

import (
	"sort"
	"strings"
	"time"
)

// EventType represents the type of progress event
type EventType int

const (
	EventLocateStart EventType = iota
	EventLocateComplete
	EventEnterDirectory
	EventLeaveDirectory
	EventSkipped
	EventAnalysisStart
	EventAnalysisComplete
	EventFileParsing
	EventUnitRegistered
	EventTechDetected
	EventWarning
	EventBuildStart
	EventBuildComplete
	EventFileWriting
	EventFileWritten
	EventInfo
	EventGitIgnoreEnter
	EventGitIgnoreLeave
)

// Event represents something that happened during locating, analysis or build
type Event struct {
	Type      EventType
	Path      string
	Name      string
	Kind      string // role of a file, or unit classification
	Tech      string
	Info      string
	Reason    string
	FileCount int
	DirCount  int
	Duration  time.Duration
	Timestamp time.Time
}

// Reporter is the interface components use to report events
type Reporter interface {
	Report(event Event)
}

// Handler processes events and produces output
type Handler interface {
	Handle(event Event)
}

// TimingEntry represents a directory timing for analysis
type TimingEntry struct {
	Path     string
	Duration time.Duration
}

// getTimingIcon returns the appropriate icon for a duration
func getTimingIcon(seconds float64) string {
	if seconds >= 10.0 {
		return "🔴"
	} else if seconds >= 1.0 {
		return "🟡"
	}
	return "🟢"
}

// shortenPath shortens a path for display if it's too long
func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		return ".../" + strings.Join(parts[len(parts)-2:], "/")
	}
	return path
}

// sortTimingsByDuration sorts timings by duration descending
func sortTimingsByDuration(timings []TimingEntry) []TimingEntry {
	sorted := make([]TimingEntry, len(timings))
	copy(sorted, timings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Duration > sorted[j].Duration
	})
	return sorted
}
