package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. ok is false for unknown names.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// Logger provides leveled logging
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	minLevel Level
	prefix   string

	// tee mirrors every entry into the session log file
	tee bool
}

// global default logger
var defaultLogger = New(os.Stderr, LevelWarn, "")

// fileLogger writes all logs to a file regardless of level
var (
	fileLogger     *Logger
	fileLoggerOnce sync.Once
	logFile        *os.File
	logDir         = filepath.Join(".pplxchat", "logs")
	fileDisabled   bool
)

// SetLogDir sets where session log files are written. Must be called before the first log call.
func SetLogDir(dir string) {
	logDir = dir
}

// DisableFileLog turns off the session log file (tests, version/help output).
func DisableFileLog() {
	fileDisabled = true
}

func initFileLogger() {
	if fileDisabled {
		return
	}

	dir, err := filepath.Abs(logDir)
	if err != nil {
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(dir, fmt.Sprintf("session_%s.log", timestamp))

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	logFile = f
	fileLogger = New(f, LevelDebug, "")

	cwd, _ := os.Getwd()
	_, _ = fmt.Fprintf(f, "=== Session started at %s ===\n", time.Now().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(f, "Working directory: %s\n", cwd)

	latestPath := filepath.Join(dir, "latest.log")
	_ = os.Remove(latestPath)
	_ = os.Symlink(filepath.Base(logPath), latestPath)
}

func getFileLogger() *Logger {
	fileLoggerOnce.Do(initFileLogger)
	return fileLogger
}

// CloseLogFile closes the log file (call on shutdown)
func CloseLogFile() {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// New creates a new logger
func New(output io.Writer, minLevel Level, prefix string) *Logger {
	return &Logger{
		output:   output,
		minLevel: minLevel,
		prefix:   prefix,
	}
}

// SetOutput sets the output destination
func SetOutput(w io.Writer) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.output = w
}

// SetLevel sets the minimum log level
func SetLevel(level Level) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.minLevel = level
}

// SetLevelFromString sets level from string (debug, info, warn, error)
func SetLevelFromString(level string) {
	if l, ok := ParseLevel(level); ok {
		SetLevel(l)
	}
}

// WithPrefix returns a logger that tags every entry with [prefix].
// It shares the default logger's output and level, and mirrors to the session log file.
func WithPrefix(prefix string) *Logger {
	return &Logger{prefix: prefix, tee: true}
}

func (l *Logger) log(level Level, format string, args ...any) {
	out, minLevel := l.output, l.minLevel
	if l.tee {
		defaultLogger.mu.Lock()
		out, minLevel = defaultLogger.output, defaultLogger.minLevel
		defaultLogger.mu.Unlock()

		if fl := getFileLogger(); fl != nil {
			fl.write(fl.output, level, l.prefix, format, args...)
		}
	}

	if level < minLevel {
		return
	}
	l.write(out, level, l.prefix, format, args...)
}

func (l *Logger) write(out io.Writer, level Level, prefix, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("15:04:05")
	tag := ""
	if prefix != "" {
		tag = "[" + prefix + "] "
	}

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(out, "%s %s %s%s\n", timestamp, level.String(), tag, msg)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Package-level functions using default logger

// Debug logs a debug message
func Debug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
	if fl := getFileLogger(); fl != nil {
		fl.Debug(format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
	if fl := getFileLogger(); fl != nil {
		fl.Info(format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...any) {
	defaultLogger.Warn(format, args...)
	if fl := getFileLogger(); fl != nil {
		fl.Warn(format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...any) {
	defaultLogger.Error(format, args...)
	if fl := getFileLogger(); fl != nil {
		fl.Error(format, args...)
	}
}

// Enabled returns true if the given level would be logged
func Enabled(level Level) bool {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	return level >= defaultLogger.minLevel
}

// DebugEnabled returns true if debug logging is enabled
func DebugEnabled() bool {
	return Enabled(LevelDebug)
}
