// Package logger provides leveled console logging for rename runs.
//
// Output lines are prefixed with [HH:MM:SS] timestamps. Color is enabled
// automatically when writing to a terminal and suppressed for pipes and
// files. Implementations are safe for concurrent use.
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
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// Logger is the logging interface the planner and applier write to.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Console logs to a writer with timestamps, level filtering, and optional
// ANSI color.
type Console struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsole creates a Console that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// logLevel determines the minimum level emitted; valid levels are trace,
// debug, info, warn, error (case-insensitive). Empty or invalid levels
// default to "info". Color is enabled only for TTY writers.
func NewConsole(writer io.Writer, logLevel string) *Console {
	return &Console{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
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

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
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

// shouldLog checks if a message at the given level should be logged.
func (c *Console) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(c.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (c *Console) LogTrace(message string) {
	c.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (c *Console) LogDebug(message string) {
	c.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (c *Console) LogInfo(message string) {
	c.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (c *Console) LogWarn(message string) {
	c.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (c *Console) LogError(message string) {
	c.logWithLevel("ERROR", message)
}

// logWithLevel formats and writes a message if filtering allows it.
func (c *Console) logWithLevel(level string, message string) {
	if c.writer == nil {
		return
	}
	if !c.shouldLog(strings.ToLower(level)) {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	ts := time.Now().Format("15:04:05")
	levelText := level
	if c.colorOutput {
		levelText = colorizeLevel(level)
	}
	fmt.Fprintf(c.writer, "[%s] [%s] %s\n", ts, levelText, message)
}

// colorizeLevel wraps a level label in its ANSI color.
func colorizeLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
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

// Nop is a Logger that discards all messages. Useful for tests.
type Nop struct{}

// NewNop creates a Nop logger.
func NewNop() *Nop {
	return &Nop{}
}

// LogTrace is a no-op implementation.
func (n *Nop) LogTrace(message string) {}

// LogDebug is a no-op implementation.
func (n *Nop) LogDebug(message string) {}

// LogInfo is a no-op implementation.
func (n *Nop) LogInfo(message string) {}

// LogWarn is a no-op implementation.
func (n *Nop) LogWarn(message string) {}

// LogError is a no-op implementation.
func (n *Nop) LogError(message string) {}
