// Package applog provides general-purpose application logging.
//
// Logs are written to ~/.progression/logs/app.log with timestamps.
// Covers: start/stop, configuration, warehouse connections, sessions
// and per-turn failures. Nothing is ever printed to the terminal, which
// belongs to the chat UI.
package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	out io.Writer
	f   *os.File
	dir string
)

// DefaultDir returns ~/.progression/logs, or "" when there is no home directory.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".progression", "logs")
}

// Open starts logging to logDir/app.log. An empty logDir selects
// DefaultDir. Failure leaves logging disabled and is returned so the
// caller can decide whether it matters.
func Open(logDir string) error {
	if logDir == "" {
		logDir = DefaultDir()
	}
	if logDir == "" {
		return fmt.Errorf("no log directory")
	}
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}
	file, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if f != nil {
		f.Close()
	}
	f, out, dir = file, file, logDir
	return nil
}

// SetOutput redirects logging to w (nil disables it). Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Dir returns the directory passed to Open, for sibling log files.
func Dir() string {
	mu.Lock()
	defer mu.Unlock()
	return dir
}

func write(s string) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		io.WriteString(out, s) //nolint:errcheck
	}
}

func stamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// Info logs a general info message.
func Info(format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] INFO  %s\n", stamp(), fmt.Sprintf(format, args...)))
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] ERROR %s\n", stamp(), fmt.Sprintf(format, args...)))
}

// Event logs a structured event with a category.
func Event(category string, format string, args ...interface{}) {
	write(fmt.Sprintf("[%s] %-12s %s\n", stamp(), category, fmt.Sprintf(format, args...)))
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if f != nil {
		f.Close()
		f = nil
	}
	out = nil
}
