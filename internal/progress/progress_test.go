package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSimpleHandler(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name: "locate start",
			event: Event{
				Type: EventLocateStart,
				Path: "/legacy/project",
				Info: "__history, backup",
			},
			expected: "[SCAN] Starting: /legacy/project\n[SCAN] Excluding: __history, backup\n",
		},
		{
			name: "enter directory",
			event: Event{
				Type: EventEnterDirectory,
				Path: "src",
			},
			expected: "[DIR]  Entering: src\n",
		},
		{
			name: "file parsing",
			event: Event{
				Type: EventFileParsing,
				Path: "src/Customer.pas",
				Kind: "pas",
			},
			expected: "[FILE] Parsing: src/Customer.pas (pas)\n",
		},
		{
			name: "unit registered",
			event: Event{
				Type: EventUnitRegistered,
				Name: "Customer",
				Kind: "form",
				Path: "src/Customer.pas",
			},
			expected: "[UNIT] Customer (form) from src/Customer.pas\n",
		},
		{
			name: "skipped",
			event: Event{
				Type:   EventSkipped,
				Path:   "__history",
				Reason: "excluded",
			},
			expected: "[SKIP] Excluding: __history (excluded)\n",
		},
		{
			name: "warning",
			event: Event{
				Type:   EventWarning,
				Path:   "Broken.pas",
				Reason: "no unit name found",
			},
			expected: "[WARN] Broken.pas: no unit name found\n",
		},
		{
			name: "locate complete",
			event: Event{
				Type:      EventLocateComplete,
				FileCount: 42,
				DirCount:  7,
				Duration:  1500 * time.Millisecond,
			},
			expected: "[SCAN] Completed: 42 files, 7 directories in 1.5s\n",
		},
		{
			name: "build complete",
			event: Event{
				Type:      EventBuildComplete,
				Path:      "out",
				FileCount: 6,
				Duration:  200 * time.Millisecond,
			},
			expected: "[BUILD] Completed: 6 files written to out in 0.2s\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			handler := NewSimpleHandler(buf)
			handler.Handle(tt.event)

			if buf.String() != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, buf.String())
			}
		})
	}
}

func TestAnalysisSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := New(true, NewSimpleHandler(buf))

	progress.TechDetected("ADO", "uses ADODB")
	progress.Warning("Broken.pas", "no unit name found")
	progress.AnalysisComplete(3, 1, 1, time.Second)

	output := buf.String()
	for _, part := range []string{
		"[PARSE] Completed: 3 units, 1 forms, 1 datamodules",
		"Data access technologies: 1",
		"Files with warnings: 1",
	} {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain: %s\nGot:\n%s", part, output)
		}
	}
}

func TestTimingSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := New(true, NewSimpleHandler(buf))
	progress.EnableTimings()

	progress.EnterDirectory("src")
	time.Sleep(5 * time.Millisecond)
	progress.LeaveDirectory("src")
	progress.LocateComplete(1, 1, time.Millisecond)

	output := buf.String()
	if !strings.Contains(output, "[TIME] src:") {
		t.Errorf("Expected directory timing, got:\n%s", output)
	}
	if !strings.Contains(output, "Slowest: src") {
		t.Errorf("Expected timing summary, got:\n%s", output)
	}
}

func TestProgressReporter(t *testing.T) {
	t.Run("enabled reporter calls handler", func(t *testing.T) {
		buf := &bytes.Buffer{}
		progress := New(true, NewSimpleHandler(buf))

		progress.EnterDirectory("src")

		if buf.Len() == 0 {
			t.Error("Expected handler to be called when enabled")
		}
	})

	t.Run("disabled reporter does not call handler", func(t *testing.T) {
		buf := &bytes.Buffer{}
		progress := New(false, NewSimpleHandler(buf))

		progress.EnterDirectory("src")

		if buf.Len() > 0 {
			t.Error("Expected handler not to be called when disabled")
		}
	})

	t.Run("nil reporter is a no-op", func(t *testing.T) {
		var progress *Progress
		progress.EnterDirectory("src")
		progress.Info("ignored")
	})
}

func TestConvenienceMethods(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := WriterFor(true, buf)

	progress.LocateStart("/legacy", []string{"__history", "backup"})
	progress.EnterDirectory("src")
	progress.Skipped("src/old", "gitignore")
	progress.FileParsing("src/Main.pas", "pas")
	progress.UnitRegistered("Main", "unit", "src/Main.pas")
	progress.BuildStart("out", 3)
	progress.FileWritten("out/pom.xml")
	progress.Info("done")

	expectedLines := 9 // locate start (2 lines) + 7 other events
	actualLines := strings.Count(buf.String(), "\n")

	if actualLines != expectedLines {
		t.Errorf("Expected %d lines, got %d\nOutput:\n%s", expectedLines, actualLines, buf.String())
	}
}

func BenchmarkSimpleHandler(b *testing.B) {
	buf := &bytes.Buffer{}
	handler := NewSimpleHandler(buf)
	event := Event{
		Type: EventEnterDirectory,
		Path: "/some/path",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.Handle(event)
	}
}

func BenchmarkProgressReporterDisabled(b *testing.B) {
	progress := Disabled()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		progress.EnterDirectory("/some/path")
	}
}
