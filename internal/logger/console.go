// Package logger provides console logging for harness execution progress.
//
// The ConsoleLogger prints timestamped, level-filtered messages plus
// harness-specific events: test case start, per-iteration outcome, and the
// suite summary. It is thread-safe and color-aware for terminal output.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/artcheck/internal/models"
)

// Log level constants for filtering
const (
	levelDebug int = 0
	levelInfo  int = 1
	levelWarn  int = 2
	levelError int = 3
)

// ConsoleLogger logs harness progress to a writer with [HH:MM:SS]
// timestamps. If the writer is nil, messages are silently discarded.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger writing to the given writer.
// logLevel is one of debug, info, warn, error (case-insensitive); empty or
// invalid levels default to "info". Color output is enabled automatically
// when the writer is a TTY.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether the writer is a TTY that supports colors.
// NO_COLOR is honored via the color library's global flag.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func logLevelToInt(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), colorizeLevel(level), message)
	} else {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), level, message)
	}
}

func colorizeLevel(level string) string {
	switch level {
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	}
	return level
}

// LogCaseStart logs the start of a test case at INFO level.
// Format: "[HH:MM:SS] Running <name>: <description> (<n> iterations)"
func (cl *ConsoleLogger) LogCaseStart(tc models.TestCase) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	name := tc.Name
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(tc.Name)
	}
	desc := ""
	if tc.Description != "" {
		desc = ": " + tc.Description
	}
	if tc.IterationCount() > 1 {
		fmt.Fprintf(cl.writer, "[%s] Running %s%s (%d iterations)\n", timestamp(), name, desc, tc.IterationCount())
	} else {
		fmt.Fprintf(cl.writer, "[%s] Running %s%s\n", timestamp(), name, desc)
	}
}

// LogIteration logs one iteration's outcome at DEBUG level.
func (cl *ConsoleLogger) LogIteration(result models.RunResult) {
	if cl.writer == nil || !cl.shouldLog("debug") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	status := "PASS"
	if !result.Passed() {
		status = "FAIL"
	}
	if cl.colorOutput {
		if result.Passed() {
			status = color.New(color.FgGreen).Sprint(status)
		} else {
			status = color.New(color.FgRed).Sprint(status)
		}
	}
	fmt.Fprintf(cl.writer, "[%s] %s: %s (%s)\n", timestamp(), result.IterationName, status, formatDuration(result.Duration))
}

// LogCaseResult logs a test case outcome at INFO level, including the
// failure detail for failed cases.
func (cl *ConsoleLogger) LogCaseResult(result models.CaseResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	name := result.Case.Name
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(name)
	}

	if result.Passed() {
		status := "passed"
		if cl.colorOutput {
			status = color.New(color.FgGreen).Sprint(status)
		}
		fmt.Fprintf(cl.writer, "[%s] %s %s (%s)\n", timestamp(), name, status, formatDuration(result.Duration))
		return
	}

	status := "FAILED"
	if cl.colorOutput {
		status = color.New(color.FgRed).Sprint(status)
	}
	fmt.Fprintf(cl.writer, "[%s] %s %s (%s)\n", timestamp(), name, status, formatDuration(result.Duration))
	for _, line := range strings.Split(result.Err.Error(), "\n") {
		fmt.Fprintf(cl.writer, "[%s]   %s\n", timestamp(), line)
	}
}

// LogSummary logs the suite summary at INFO level.
func (cl *ConsoleLogger) LogSummary(result models.SuiteResult) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	fmt.Fprintf(cl.writer, "[%s] === Suite Summary ===\n", ts)
	fmt.Fprintf(cl.writer, "[%s] Total cases: %d\n", ts, result.TotalCases)

	passed := fmt.Sprintf("%d", result.Passed)
	failed := fmt.Sprintf("%d", result.Failed)
	if cl.colorOutput {
		passed = color.New(color.FgGreen).Sprint(passed)
		if result.Failed > 0 {
			failed = color.New(color.FgRed).Sprint(failed)
		}
	}
	fmt.Fprintf(cl.writer, "[%s] Passed: %s\n", ts, passed)
	fmt.Fprintf(cl.writer, "[%s] Failed: %s\n", ts, failed)
	fmt.Fprintf(cl.writer, "[%s] Duration: %s\n", ts, formatDuration(result.Duration))
}

// formatDuration renders durations compactly (1.2s, 250ms).
func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
