// Package logging provides categorized file-based logging for wumpuswatch.
// The interactive console owns the terminal, so runtime diagnostics go to
// per-category files under the log directory instead of stderr. Logging is a
// silent no-op unless debug mode is enabled in config.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, teardown
	CategoryChannel  Category = "channel"  // Websocket channel, frame dispatch
	CategoryControl  Category = "control"  // Control requests to the agent process
	CategoryAutoplay Category = "autoplay" // Autoplay driver ticks and transitions
	CategoryConsole  Category = "console"  // TUI events
	CategoryStore    Category = "store"    // Session recorder
)

// Options mirrors the relevant parts of config.LoggingConfig to avoid a
// circular import; the caller passes values through at startup.
type Options struct {
	DebugMode bool
	Level     string
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	optsMu    sync.RWMutex
	opts      Options
	logLevel  int
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory. Should be called once at startup.
// When debug mode is off nothing is created and every call becomes a no-op.
func Initialize(dir string, o Options) error {
	optsMu.Lock()
	opts = o
	switch o.Level {
	case "debug":
		logLevel = LevelDebug
	case "info", "":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	optsMu.Unlock()

	if !o.DebugMode {
		return nil
	}
	if dir == "" {
		return fmt.Errorf("log directory required in debug mode")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	logsDir = dir

	boot := Get(CategoryBoot)
	boot.Info("=== wumpuswatch logging initialized ===")
	boot.Info("Logs directory: %s", logsDir)
	boot.Info("Log level: %s", o.Level)
	return nil
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	optsMu.RLock()
	defer optsMu.RUnlock()
	return opts.DebugMode
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled.
func Get(category Category) *Logger {
	if !IsDebugMode() || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation a matter of deleting old files.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootError logs error to the boot category.
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
}

// Channel logs to the channel category.
func Channel(format string, args ...interface{}) {
	Get(CategoryChannel).Info(format, args...)
}

// ChannelDebug logs debug to the channel category.
func ChannelDebug(format string, args ...interface{}) {
	Get(CategoryChannel).Debug(format, args...)
}

// ChannelWarn logs warning to the channel category.
func ChannelWarn(format string, args ...interface{}) {
	Get(CategoryChannel).Warn(format, args...)
}

// Control logs to the control category.
func Control(format string, args ...interface{}) {
	Get(CategoryControl).Info(format, args...)
}

// ControlWarn logs warning to the control category.
func ControlWarn(format string, args ...interface{}) {
	Get(CategoryControl).Warn(format, args...)
}

// Autoplay logs to the autoplay category.
func Autoplay(format string, args ...interface{}) {
	Get(CategoryAutoplay).Info(format, args...)
}

// AutoplayWarn logs warning to the autoplay category.
func AutoplayWarn(format string, args ...interface{}) {
	Get(CategoryAutoplay).Warn(format, args...)
}

// Console logs to the console category.
func Console(format string, args ...interface{}) {
	Get(CategoryConsole).Info(format, args...)
}

// ConsoleDebug logs debug to the console category.
func ConsoleDebug(format string, args ...interface{}) {
	Get(CategoryConsole).Debug(format, args...)
}

// Store logs to the store category.
func Store(format string, args ...interface{}) {
	Get(CategoryStore).Info(format, args...)
}

// StoreWarn logs warning to the store category.
func StoreWarn(format string, args ...interface{}) {
	Get(CategoryStore).Warn(format, args...)
}
