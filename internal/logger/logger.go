// Package logger prints request-pipeline diagnostics for the gateway to
// stderr. Warnings are always emitted so that skipped sources, failed
// audit writes and rejected credentials stay visible on a headless
// server; Debug, Info and Section output appears only in verbose mode.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose toggles verbose output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(verboseOnly bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verboseOnly && !verbose {
		return
	}
	fmt.Fprintf(output, level+" "+format+"\n", args...)
}

// Debug traces individual pipeline steps in verbose mode.
func Debug(format string, args ...any) {
	emit(true, "[debug]", format, args...)
}

// Section marks the start of one tool operation in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n--- %s ---\n", name)
	}
}

// Info reports pipeline outcomes in verbose mode.
func Info(format string, args ...any) {
	emit(true, "[info]", format, args...)
}

// Warn reports degraded behaviour. Warnings print regardless of the
// verbose setting.
func Warn(format string, args ...any) {
	emit(false, "[warn]", format, args...)
}
