package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileExporter_BasicExport(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}

	record := &TraceRecord{
		Timestamp:   time.Date(2026, 1, 14, 10, 30, 0, 0, time.UTC),
		OperationID: "test-op-1",
		Operation:   "add",
		DurationMs:  3,
		Status:      "success",
		Spans: []SpanRecord{
			{Name: "validate", DurationMs: 0, OK: true},
			{Name: "write", DurationMs: 2, OK: true},
			{Name: "reload", DurationMs: 1, OK: true, Counters: map[string]int64{"movies": 4}},
		},
		IDs: map[string]interface{}{"movieId": 4},
	}

	if err := exporter.Export(context.Background(), record); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if err := exporter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("Read trace file failed: %v", err)
	}

	var readRecord TraceRecord
	if err := json.Unmarshal(data, &readRecord); err != nil {
		t.Fatalf("Unmarshal trace record failed: %v", err)
	}

	if readRecord.OperationID != "test-op-1" {
		t.Errorf("Expected operationId 'test-op-1', got '%s'", readRecord.OperationID)
	}
	if readRecord.Operation != "add" {
		t.Errorf("Expected operation 'add', got '%s'", readRecord.Operation)
	}
	if len(readRecord.Spans) != 3 {
		t.Errorf("Expected 3 spans, got %d", len(readRecord.Spans))
	}
	if readRecord.Spans[2].Counters["movies"] != 4 {
		t.Errorf("Expected reload counter movies=4, got %v", readRecord.Spans[2].Counters)
	}
}

func TestNewFileExporter_EmptyPathIsNoop(t *testing.T) {
	exporter, err := NewFileExporter("")
	if err != nil {
		t.Fatalf("NewFileExporter(\"\") failed: %v", err)
	}
	if _, ok := exporter.(*NoopExporter); !ok {
		t.Fatalf("Expected *NoopExporter, got %T", exporter)
	}

	record := &TraceRecord{
		Timestamp:   time.Now(),
		OperationID: "noop-op",
		Operation:   "reload",
		Status:      "success",
	}

	if err := exporter.Export(context.Background(), record); err != nil {
		t.Fatalf("Export on noop exporter should succeed, got: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Fatalf("Close on noop exporter should succeed, got: %v", err)
	}
}

func TestFileExporter_MultipleRecords(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}

	for _, op := range []string{"add", "set_watched", "delete"} {
		record := &TraceRecord{
			Timestamp:   time.Now(),
			OperationID: "op-" + op,
			Operation:   op,
			Status:      "success",
		}
		if err := exporter.Export(context.Background(), record); err != nil {
			t.Fatalf("Export failed: %v", err)
		}
	}
	exporter.Close()

	file, err := os.Open(tracePath)
	if err != nil {
		t.Fatalf("Open trace file failed: %v", err)
	}
	defer file.Close()

	lineCount := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record TraceRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Errorf("Line %d is not valid JSON: %v", lineCount+1, err)
		}
		lineCount++
	}

	if lineCount != 3 {
		t.Errorf("Expected 3 lines, got %d", lineCount)
	}
}

func TestFileExporter_Rotation(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath, WithMaxSize(1024), WithMaxRotatedFiles(3))
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}
	defer exporter.Close()

	// Each record is ~250 bytes, so 30 records rotate several times
	for i := 0; i < 30; i++ {
		record := &TraceRecord{
			Timestamp:   time.Now(),
			OperationID: "op-" + strings.Repeat("x", 50),
			Operation:   "edit",
			DurationMs:  2,
			Status:      "success",
			Spans: []SpanRecord{
				{Name: "validate", DurationMs: 0, OK: true},
				{Name: "write", DurationMs: 1, OK: true},
				{Name: "reload", DurationMs: 1, OK: true, Counters: map[string]int64{"movies": 3}},
			},
		}
		if err := exporter.Export(context.Background(), record); err != nil {
			t.Fatalf("Export %d failed: %v", i, err)
		}
	}

	if err := exporter.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	fileCount := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "traces.jsonl") {
			fileCount++
		}
	}

	if fileCount < 2 {
		t.Errorf("Expected at least 2 trace files, got %d", fileCount)
	}
	if fileCount > 4 {
		t.Errorf("Expected at most 4 trace files (current + 3 rotated), got %d", fileCount)
	}
}

func TestFileExporter_ErrorRecording(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}

	record := &TraceRecord{
		Timestamp:   time.Now(),
		OperationID: "op-err",
		Operation:   "delete",
		Status:      "error",
		ErrorType:   "not_found",
		Spans: []SpanRecord{
			{Name: "write", OK: false, ErrorType: "not_found"},
		},
	}
	if err := exporter.Export(context.Background(), record); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	exporter.Close()

	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("Read trace file failed: %v", err)
	}
	var got TraceRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.ErrorType != "not_found" || got.Spans[0].OK {
		t.Errorf("Error details not recorded: %+v", got)
	}
}

func TestFileExporter_ExportAfterClose(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}

	if err := exporter.Close(); err != nil {
		t.Fatalf("First Close failed: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got: %v", err)
	}
	if err := exporter.Export(context.Background(), &TraceRecord{}); err == nil {
		t.Error("Expected error exporting after close")
	}
}

func TestFileExporter_DirectoryCreation(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "deeper", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}
	defer exporter.Close()

	if _, err := os.Stat(tracePath); err != nil {
		t.Errorf("Trace file not created: %v", err)
	}
}
