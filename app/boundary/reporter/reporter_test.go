package reporter

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wasya-io/kilonote/app/entity/fault"
)

func TestFileReporterAppendsLines(t *testing.T) {
	r := NewFileReporter(t.TempDir())

	for i := 0; i < 2; i++ {
		report := fault.NewReport(errors.New("render failed"), "stack", time.Unix(int64(i), 0))
		if err := r.Report(report); err != nil {
			t.Fatalf("Report failed: %v", err)
		}
	}
	if r.Sent() != 2 {
		t.Errorf("Expected 2 sent reports, got %d", r.Sent())
	}

	f, err := os.Open(r.Path())
	if err != nil {
		t.Fatalf("Failed to open report file: %v", err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var got fault.Report
		if err := json.Unmarshal(scanner.Bytes(), &got); err != nil {
			t.Fatalf("Invalid JSON line: %v", err)
		}
		if got.Message != "render failed" || got.ID == "" {
			t.Errorf("Unexpected report: %+v", got)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("Expected 2 lines, got %d", lines)
	}
}

func TestFileReporterBadDirectory(t *testing.T) {
	r := NewFileReporter("/nonexistent/kilonote/reports")
	if err := r.Report(fault.NewReport(errors.New("x"), "s", time.Now())); err == nil {
		t.Error("Expected error for missing directory")
	}
	if r.Sent() != 0 {
		t.Error("Failed report should not be counted")
	}
}

func TestMemoryReporter(t *testing.T) {
	m := &Memory{}
	m.Report(fault.Report{ID: "a"})
	m.Report(fault.Report{ID: "b"})
	got := m.Reports()
	if len(got) != 2 || got[0].ID != "a" {
		t.Errorf("Unexpected reports: %+v", got)
	}
}
