// Package logger provides leveled logging for the normativa CLI.
//
// Warnings are always written so operators see documents that need manual
// attention. Info and debug lines and section headers appear only in
// verbose mode (--verbose). Output goes to stderr so that stdout stays
// clean for answers, reports and the MCP stdio transport.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is the minimum severity written.
type Level int

// Log levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetVerbose switches between debug output and warnings only.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose returns true if info and debug lines are written.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return level <= LevelInfo
}

// SetLevel sets the minimum level written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug writes a debug line in verbose mode.
func Debug(format string, args ...any) {
	logf(LevelDebug, "[DEBUG] ", format, args...)
}

// Info writes an informational line in verbose mode.
func Info(format string, args ...any) {
	logf(LevelInfo, "[INFO] ", format, args...)
}

// Warn writes a warning.
func Warn(format string, args ...any) {
	logf(LevelWarn, "[WARN] ", format, args...)
}

// Section writes a section header in verbose mode.
func Section(name string) {
	logf(LevelInfo, "", "\n=== %s ===", name)
}

// Timed logs the start of a step and returns a func that logs its duration.
//
//	done := logger.Timed("Extracting %s", path)
//	defer done()
func Timed(format string, args ...any) func() {
	msg := fmt.Sprintf(format, args...)
	Debug("%s...", msg)
	start := time.Now()
	return func() {
		Info("%s done in %s", msg, time.Since(start).Round(time.Millisecond))
	}
}
