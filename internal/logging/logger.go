package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// TaskLog represents the outcome of a single host's module dispatch.
type TaskLog struct {
	Timestamp  time.Time `json:"timestamp"`
	Host       string    `json:"host"`
	Module     string    `json:"module"`
	Connection string    `json:"connection"` // "local" or "remote"
	DurationMs int64     `json:"duration_ms"`
	GateReused bool      `json:"gate_reused"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// Logger handles request logging
type Logger struct {
	mu      sync.Mutex
	enabled bool
	file    *os.File
	console bool
}

var defaultLogger = &Logger{enabled: true, console: true}

// Default returns the default logger
func Default() *Logger {
	return defaultLogger
}

// SetOutput sets the log output file
func (l *Logger) SetOutput(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = f
	return nil
}

// SetConsole enables/disables console output
func (l *Logger) SetConsole(enabled bool) {
	l.mu.Lock()
	l.console = enabled
	l.mu.Unlock()
}

// Log writes a task log entry.
func (l *Logger) Log(entry *TaskLog) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}

	entry.Timestamp = time.Now()

	// Console output (human-readable)
	if l.console {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		reused := ""
		if entry.GateReused {
			reused = " [reused]"
		}
		fmt.Printf("[task] %s %s %s %s %dms%s\n",
			status, entry.Host, entry.Module, entry.Connection, entry.DurationMs, reused)
		if entry.Error != "" {
			fmt.Printf("[task]   error: %s\n", entry.Error)
		}
	}

	// File output (JSON)
	if l.file != nil {
		data, _ := json.Marshal(entry)
		l.file.Write(append(data, '\n'))
	}
}

// Close closes the log file
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}
