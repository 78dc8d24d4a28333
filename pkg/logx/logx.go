// Package logx is the project-wide leveled, structured logger. It renders
// human-readable console output by default and JSON when LOG_FORMAT=json,
// which is what the hosted environments ingest.
package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a logging severity.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelOff
)

// String returns the upper-case name of the level.
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
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Enabled reports whether a message at level target should be emitted.
func (l Level) Enabled(target Level) bool { return target >= l }

// ParseLevel parses a level name, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	case "OFF":
		return LevelOff
	default:
		return LevelInfo
	}
}

// Fields is a set of structured key-value pairs attached to a log entry.
type Fields map[string]any

// Logger writes formatted log entries to a single writer.
type Logger struct {
	mu        sync.Mutex
	level     Level
	writer    io.Writer
	formatter formatter
	exitFunc  func(int)
}

// NewLogger creates a logger writing to stdout with the given level and
// format ("json" or "console").
func NewLogger(level Level, format string) *Logger {
	var f formatter
	if strings.EqualFold(format, "json") {
		f = jsonFormatter{}
	} else {
		f = consoleFormatter{}
	}
	return &Logger{
		level:     level,
		writer:    os.Stdout,
		formatter: f,
		exitFunc:  os.Exit,
	}
}

// SetLevel changes the minimum emitted level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects the logger output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.level.Enabled(level) {
		return
	}

	line := l.formatter.format(record{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Fields:  fields,
		Err:     err,
	})
	fmt.Fprintln(l.writer, line)

	if level == LevelFatal {
		l.exitFunc(1)
	}
}

// ---------------------------------------------------------------------------
// Package-level default logger
// ---------------------------------------------------------------------------

var defaultLogger = NewLogger(
	ParseLevel(os.Getenv("LOG_LEVEL")),
	os.Getenv("LOG_FORMAT"),
)

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(l *Logger) { defaultLogger = l }

// GetDefaultLogger returns the package-level logger.
func GetDefaultLogger() *Logger { return defaultLogger }

// SetLevel sets the level on the default logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }
func Fatal(msg string) { defaultLogger.log(LevelFatal, msg, nil, nil) }

func Debugf(format string, args ...any) {
	defaultLogger.log(LevelDebug, fmt.Sprintf(format, args...), nil, nil)
}

func Infof(format string, args ...any) {
	defaultLogger.log(LevelInfo, fmt.Sprintf(format, args...), nil, nil)
}

func Warnf(format string, args ...any) {
	defaultLogger.log(LevelWarn, fmt.Sprintf(format, args...), nil, nil)
}

func Errorf(format string, args ...any) {
	defaultLogger.log(LevelError, fmt.Sprintf(format, args...), nil, nil)
}

func Fatalf(format string, args ...any) {
	defaultLogger.log(LevelFatal, fmt.Sprintf(format, args...), nil, nil)
}

// WithFields starts a structured entry on the default logger.
func WithFields(fields Fields) *Entry {
	return &Entry{logger: defaultLogger, fields: fields}
}

// WithField starts a structured entry with a single field.
func WithField(key string, value any) *Entry {
	return WithFields(Fields{key: value})
}

// WithError starts a structured entry carrying an error.
func WithError(err error) *Entry {
	e := &Entry{logger: defaultLogger, fields: Fields{}}
	return e.WithError(err)
}
