// Package progress reports what the locator, the analyzer and the builder are
// doing, for verbose command output
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Progress is the centralized verbose system
type Progress struct {
	enabled     bool
	handler     Handler
	withTimings bool

	mu         sync.Mutex
	dirTimings map[string]time.Time
}

// New creates a new progress reporter
func New(enabled bool, handler Handler) *Progress {
	if handler == nil {
		handler = NewSimpleHandler(os.Stderr)
	}
	return &Progress{
		enabled:    enabled,
		handler:    handler,
		dirTimings: make(map[string]time.Time),
	}
}

// Disabled returns a reporter that drops every event
func Disabled() *Progress {
	return New(false, NewNullHandler())
}

// EnableTimings enables per-directory timing information
func (p *Progress) EnableTimings() {
	p.withTimings = true
}

// Report sends an event to the handler (only if enabled)
func (p *Progress) Report(event Event) {
	if p == nil || !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler.Handle(event)
}

func (p *Progress) LocateStart(path string, excludePatterns []string) {
	p.Report(Event{
		Type: EventLocateStart,
		Path: path,
		Info: strings.Join(excludePatterns, ", "),
	})
}

func (p *Progress) LocateComplete(files, dirs int, duration time.Duration) {
	p.Report(Event{
		Type:      EventLocateComplete,
		FileCount: files,
		DirCount:  dirs,
		Duration:  duration,
	})
}

func (p *Progress) EnterDirectory(path string) {
	if p == nil {
		return
	}
	if p.withTimings {
		p.mu.Lock()
		p.dirTimings[path] = time.Now()
		p.mu.Unlock()
	}
	p.Report(Event{
		Type:      EventEnterDirectory,
		Path:      path,
		Timestamp: time.Now(),
	})
}

func (p *Progress) LeaveDirectory(path string) {
	if p == nil {
		return
	}
	var duration time.Duration
	if p.withTimings {
		p.mu.Lock()
		if startTime, ok := p.dirTimings[path]; ok {
			duration = time.Since(startTime)
			delete(p.dirTimings, path)
		}
		p.mu.Unlock()
	}
	p.Report(Event{
		Type:     EventLeaveDirectory,
		Path:     path,
		Duration: duration,
	})
}

func (p *Progress) Skipped(path, reason string) {
	p.Report(Event{
		Type:   EventSkipped,
		Path:   path,
		Reason: reason,
	})
}

func (p *Progress) GitIgnoreEnter(path string) {
	p.Report(Event{
		Type: EventGitIgnoreEnter,
		Path: path,
		Info: fmt.Sprintf("GitIgnore context: %s (patterns active)", path),
	})
}

func (p *Progress) GitIgnoreLeave(path string) {
	p.Report(Event{
		Type: EventGitIgnoreLeave,
		Path: path,
		Info: fmt.Sprintf("GitIgnore context: %s (patterns removed)", path),
	})
}

func (p *Progress) AnalysisStart(fileCount int) {
	p.Report(Event{
		Type:      EventAnalysisStart,
		FileCount: fileCount,
	})
}

// AnalysisComplete reports the final counts; Info carries "units/forms/datamodules"
func (p *Progress) AnalysisComplete(units, forms, dataModules int, duration time.Duration) {
	p.Report(Event{
		Type:      EventAnalysisComplete,
		FileCount: units,
		Info:      fmt.Sprintf("%d units, %d forms, %d datamodules", units, forms, dataModules),
		Duration:  duration,
	})
}

func (p *Progress) FileParsing(path, role string) {
	p.Report(Event{
		Type: EventFileParsing,
		Path: path,
		Kind: role,
	})
}

func (p *Progress) UnitRegistered(name, kind, path string) {
	p.Report(Event{
		Type: EventUnitRegistered,
		Name: name,
		Kind: kind,
		Path: path,
	})
}

func (p *Progress) TechDetected(tech, reason string) {
	p.Report(Event{
		Type:   EventTechDetected,
		Tech:   tech,
		Reason: reason,
	})
}

func (p *Progress) Warning(path, message string) {
	p.Report(Event{
		Type:   EventWarning,
		Path:   path,
		Reason: message,
	})
}

func (p *Progress) BuildStart(dir string, fileCount int) {
	p.Report(Event{
		Type:      EventBuildStart,
		Path:      dir,
		FileCount: fileCount,
	})
}

func (p *Progress) BuildComplete(dir string, files int, duration time.Duration) {
	p.Report(Event{
		Type:      EventBuildComplete,
		Path:      dir,
		FileCount: files,
		Duration:  duration,
	})
}

func (p *Progress) FileWriting(path string) {
	p.Report(Event{
		Type: EventFileWriting,
		Path: path,
	})
}

func (p *Progress) FileWritten(path string) {
	p.Report(Event{
		Type: EventFileWritten,
		Path: path,
	})
}

func (p *Progress) Info(message string) {
	p.Report(Event{
		Type: EventInfo,
		Info: message,
	})
}

// NullHandler discards all events
type NullHandler struct{}

func NewNullHandler() *NullHandler {
	return &NullHandler{}
}

func (h *NullHandler) Handle(event Event) {}

// WriterFor returns a simple-handler reporter writing to w when enabled
func WriterFor(enabled bool, w io.Writer) *Progress {
	if !enabled {
		return Disabled()
	}
	return New(true, NewSimpleHandler(w))
}
