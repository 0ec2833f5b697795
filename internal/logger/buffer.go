package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogBuffer is a thread-safe ring buffer for log entries with file
// backup. Entries pushed out of the ring are spilled to a JSONL file.
// It also implements io.Writer so it can serve as a zap sink.
type LogBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	maxSize int
	start   int
	count   int

	spillFile   *os.File
	spillWriter *bufio.Writer
	logger      *zap.Logger

	totalEntries   uint64
	spilledEntries uint64
}

// NewLogBuffer creates a log buffer holding up to maxSize entries in
// memory, spilling overflow to spillFilePath.
func NewLogBuffer(maxSize int, spillFilePath string, logger *zap.Logger) (*LogBuffer, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("log buffer size must be positive, got %d", maxSize)
	}

	dir := filepath.Dir(spillFilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	spillFile, err := os.OpenFile(spillFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open spill file: %w", err)
	}

	return &LogBuffer{
		entries:     make([]LogEntry, maxSize),
		maxSize:     maxSize,
		spillFile:   spillFile,
		spillWriter: bufio.NewWriter(spillFile),
		logger:      logger,
	}, nil
}

// Write implements io.Writer for use with zapcore.AddSync. Each write
// is expected to be one JSON encoded log line from the TUI logger.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(p, &raw); err != nil {
		// Not JSON, keep the raw line so nothing is lost
		lb.Add("info", strings.TrimSpace(string(p)), nil)
		return len(p), nil
	}

	level, _ := raw["level"].(string)
	msg, _ := raw["msg"].(string)
	delete(raw, "level")
	delete(raw, "msg")
	delete(raw, "time")

	var fields map[string]interface{}
	if len(raw) > 0 {
		fields = raw
	}
	lb.Add(level, msg, fields)
	return len(p), nil
}

// Sync flushes buffered spill data, satisfying zapcore.WriteSyncer.
func (lb *LogBuffer) Sync() error {
	return lb.Flush()
}

// Add appends a log entry, spilling the oldest one to file when the
// ring is full.
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) {
	if level == "" {
		level = "info"
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}

	if lb.count == lb.maxSize {
		if err := lb.spillToFile(lb.entries[lb.start]); err != nil {
			lb.logger.Error("Failed to spill log entry to file", zap.Error(err))
		} else {
			lb.spilledEntries++
		}
		lb.start = (lb.start + 1) % lb.maxSize
		lb.count--
	}

	lb.entries[(lb.start+lb.count)%lb.maxSize] = entry
	lb.count++
	lb.totalEntries++
}

// spillToFile writes an entry to the spill file as one JSON line
func (lb *LogBuffer) spillToFile(entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	if _, err := lb.spillWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write to spill file: %w", err)
	}
	if _, err := lb.spillWriter.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	// Flushing is left to Flush/Close for performance
	return nil
}

// GetRecentLogs returns up to limit of the most recent entries in
// chronological order. A non-positive limit returns everything held.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.count
	if limit > 0 && limit < count {
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	first := lb.count - count
	for i := first; i < lb.count; i++ {
		logs = append(logs, lb.entries[(lb.start+i)%lb.maxSize])
	}
	return logs
}

// Flush forces buffered spill data out to disk
func (lb *LogBuffer) Flush() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if err := lb.spillWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush spill writer: %w", err)
	}
	if err := lb.spillFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync spill file: %w", err)
	}
	return nil
}

// Close spills everything still held in memory and closes the file
func (lb *LogBuffer) Close() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	for i := 0; i < lb.count; i++ {
		if err := lb.spillToFile(lb.entries[(lb.start+i)%lb.maxSize]); err != nil {
			lb.logger.Error("Failed to spill entry during close", zap.Error(err))
		}
	}

	if err := lb.spillWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush during close: %w", err)
	}
	if err := lb.spillFile.Close(); err != nil {
		return fmt.Errorf("failed to close spill file: %w", err)
	}
	return nil
}

// GetStats returns buffer statistics
func (lb *LogBuffer) GetStats() (total, spilled uint64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries, lb.spilledEntries
}

// StartPeriodicFlush flushes the spill file on an interval until the
// returned channel is closed.
func (lb *LogBuffer) StartPeriodicFlush(interval time.Duration) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := lb.Flush(); err != nil {
					lb.logger.Error("Periodic flush failed", zap.Error(err))
				}
			case <-done:
				return
			}
		}
	}()

	return done
}
