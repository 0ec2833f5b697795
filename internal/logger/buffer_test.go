package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestBuffer(t *testing.T, size int) (*LogBuffer, string) {
	t.Helper()
	spillPath := filepath.Join(t.TempDir(), "spill.jsonl")
	lb, err := NewLogBuffer(size, spillPath, zap.NewNop())
	if err != nil {
		t.Fatalf("NewLogBuffer: %v", err)
	}
	return lb, spillPath
}

func TestAddAndGetRecentLogs(t *testing.T) {
	lb, _ := newTestBuffer(t, 10)

	lb.Add("info", "first", nil)
	lb.Add("warn", "second", map[string]interface{}{"k": "v"})
	lb.Add("error", "third", nil)

	logs := lb.GetRecentLogs(0)
	if len(logs) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(logs))
	}
	if logs[0].Message != "first" || logs[2].Message != "third" {
		t.Errorf("entries out of order: %v", logs)
	}
	if logs[1].Fields["k"] != "v" {
		t.Error("fields not preserved")
	}
}

func TestGetRecentLogs_Limit(t *testing.T) {
	lb, _ := newTestBuffer(t, 10)

	for i := 0; i < 5; i++ {
		lb.Add("info", "msg", nil)
	}
	lb.Add("info", "last", nil)

	logs := lb.GetRecentLogs(2)
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[1].Message != "last" {
		t.Errorf("limit did not keep the newest entries: %v", logs)
	}
}

func TestRingOverflow_SpillsOldest(t *testing.T) {
	lb, spillPath := newTestBuffer(t, 3)

	lb.Add("info", "a", nil)
	lb.Add("info", "b", nil)
	lb.Add("info", "c", nil)
	lb.Add("info", "d", nil) // pushes "a" out to the spill file

	logs := lb.GetRecentLogs(0)
	if len(logs) != 3 {
		t.Fatalf("expected 3 in-memory entries, got %d", len(logs))
	}
	if logs[0].Message != "b" || logs[2].Message != "d" {
		t.Errorf("unexpected ring contents: %v", logs)
	}

	if err := lb.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	f, err := os.Open(spillPath)
	if err != nil {
		t.Fatalf("open spill file: %v", err)
	}
	defer f.Close()

	var spilled []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("bad spill line: %v", err)
		}
		spilled = append(spilled, entry)
	}
	if len(spilled) != 1 || spilled[0].Message != "a" {
		t.Errorf("spill file = %v, want just entry a", spilled)
	}

	total, spilledCount := lb.GetStats()
	if total != 4 || spilledCount != 1 {
		t.Errorf("stats = %d/%d, want 4/1", total, spilledCount)
	}
}

func TestClose_SpillsRemaining(t *testing.T) {
	lb, spillPath := newTestBuffer(t, 10)

	lb.Add("info", "kept", nil)
	if err := lb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(spillPath)
	if err != nil {
		t.Fatalf("read spill file: %v", err)
	}
	if len(data) == 0 {
		t.Error("close did not spill held entries")
	}
}

func TestWrite_ParsesZapJSONLines(t *testing.T) {
	lb, _ := newTestBuffer(t, 10)

	line := `{"level":"warn","time":"2026-08-25T10:00:00Z","msg":"stream dropped","delay":"1.5s"}` + "\n"
	if _, err := lb.Write([]byte(line)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	logs := lb.GetRecentLogs(0)
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}
	if logs[0].Level != "warn" || logs[0].Message != "stream dropped" {
		t.Errorf("entry = %+v", logs[0])
	}
	if logs[0].Fields["delay"] != "1.5s" {
		t.Errorf("extra fields not kept: %+v", logs[0].Fields)
	}
}

func TestWrite_NonJSONFallsBackToRawLine(t *testing.T) {
	lb, _ := newTestBuffer(t, 10)

	if _, err := lb.Write([]byte("plain text line\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	logs := lb.GetRecentLogs(0)
	if len(logs) != 1 || logs[0].Message != "plain text line" {
		t.Errorf("logs = %v", logs)
	}
}

func TestTUILogger_WritesIntoBuffer(t *testing.T) {
	lb, _ := newTestBuffer(t, 10)

	log, err := CreateTUILoggerWithBuffer(true, lb)
	if err != nil {
		t.Fatalf("CreateTUILoggerWithBuffer: %v", err)
	}

	log.Info("connected", zap.String("address", "0xabc"))
	_ = log.Sync()

	logs := lb.GetRecentLogs(0)
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}
	if logs[0].Message != "connected" || logs[0].Level != "info" {
		t.Errorf("entry = %+v", logs[0])
	}
	if logs[0].Fields["address"] != "0xabc" {
		t.Errorf("zap fields not captured: %+v", logs[0].Fields)
	}
}
