package progress

import (
	"fmt"
	"io"
	"time"
)

// SimpleHandler outputs events as simple lines
type SimpleHandler struct {
	writer   io.Writer
	timings  []TimingEntry
	techs    []string
	warnings int
}

func NewSimpleHandler(writer io.Writer) *SimpleHandler {
	return &SimpleHandler{
		writer:  writer,
		timings: make([]TimingEntry, 0),
	}
}

func (h *SimpleHandler) Handle(event Event) {
	switch event.Type {
	case EventLocateStart:
		fmt.Fprintf(h.writer, "[SCAN] Starting: %s\n", event.Path)
		if event.Info != "" {
			fmt.Fprintf(h.writer, "[SCAN] Excluding: %s\n", event.Info)
		}

	case EventLocateComplete:
		fmt.Fprintf(h.writer, "[SCAN] Completed: %d files, %d directories in %.1fs\n",
			event.FileCount, event.DirCount, event.Duration.Seconds())
		h.printTimingSummary()

	case EventEnterDirectory:
		fmt.Fprintf(h.writer, "[DIR]  Entering: %s\n", event.Path)

	case EventLeaveDirectory:
		if event.Duration > 0 {
			h.timings = append(h.timings, TimingEntry{Path: event.Path, Duration: event.Duration})
			seconds := event.Duration.Seconds()
			fmt.Fprintf(h.writer, "[TIME] %s: %s %.2fs\n", event.Path, getTimingIcon(seconds), seconds)
		}

	case EventSkipped:
		fmt.Fprintf(h.writer, "[SKIP] Excluding: %s (%s)\n", event.Path, event.Reason)

	case EventGitIgnoreEnter, EventGitIgnoreLeave:
		fmt.Fprintf(h.writer, "[GIT]  %s\n", event.Info)

	case EventAnalysisStart:
		fmt.Fprintf(h.writer, "[PARSE] Analyzing %d files\n", event.FileCount)

	case EventFileParsing:
		fmt.Fprintf(h.writer, "[FILE] Parsing: %s (%s)\n", event.Path, event.Kind)

	case EventUnitRegistered:
		fmt.Fprintf(h.writer, "[UNIT] %s (%s) from %s\n", event.Name, event.Kind, event.Path)

	case EventTechDetected:
		h.techs = append(h.techs, event.Tech)
		fmt.Fprintf(h.writer, "[TECH] %s (%s)\n", event.Tech, event.Reason)

	case EventWarning:
		h.warnings++
		fmt.Fprintf(h.writer, "[WARN] %s: %s\n", event.Path, event.Reason)

	case EventAnalysisComplete:
		fmt.Fprintf(h.writer, "[PARSE] Completed: %s in %.1fs\n", event.Info, event.Duration.Seconds())
		h.printAnalysisSummary()

	case EventBuildStart:
		fmt.Fprintf(h.writer, "[BUILD] Materializing %d files into %s\n", event.FileCount, event.Path)

	case EventBuildComplete:
		fmt.Fprintf(h.writer, "[BUILD] Completed: %d files written to %s in %.1fs\n",
			event.FileCount, event.Path, event.Duration.Seconds())

	case EventFileWriting:
		fmt.Fprintf(h.writer, "[OUT]  Writing: %s\n", event.Path)

	case EventFileWritten:
		fmt.Fprintf(h.writer, "[OUT]  Written: %s\n", event.Path)

	case EventInfo:
		fmt.Fprintf(h.writer, "[INFO] %s\n", event.Info)
	}
}

// printTimingSummary lists the slowest directories when timings were collected
func (h *SimpleHandler) printTimingSummary() {
	if len(h.timings) == 0 {
		return
	}

	var total time.Duration
	for _, timing := range h.timings {
		total += timing.Duration
	}
	sorted := sortTimingsByDuration(h.timings)

	fmt.Fprintf(h.writer, "\nTIMING SUMMARY\n")
	fmt.Fprintf(h.writer, "   • Total directories: %d\n", len(h.timings))
	fmt.Fprintf(h.writer, "   • Average per directory: %.3fs\n", total.Seconds()/float64(len(h.timings)))
	fmt.Fprintf(h.writer, "   • Slowest: %s (%.2fs)\n", shortenPath(sorted[0].Path, 50), sorted[0].Duration.Seconds())
	fmt.Fprintln(h.writer)
}

func (h *SimpleHandler) printAnalysisSummary() {
	if len(h.techs) == 0 && h.warnings == 0 {
		return
	}
	fmt.Fprintf(h.writer, "\nANALYSIS SUMMARY\n")
	fmt.Fprintf(h.writer, "   • Data access technologies: %d\n", len(h.techs))
	if h.warnings > 0 {
		fmt.Fprintf(h.writer, "   • Files with warnings: %d\n", h.warnings)
	}
	fmt.Fprintln(h.writer)
}
