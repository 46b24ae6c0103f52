// Package logger provides a level-based logger with optional file output,
// backed by zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is for detailed diagnostic information.
	LevelDebug LogLevel = iota
	// LevelInfo is for general informational messages.
	LevelInfo
	// LevelWarning is for conditions the operator should look at.
	LevelWarning
	// LevelError is for failures.
	LevelError
)

// Logger wraps a zerolog.Logger with printf-style helpers.
type Logger struct {
	zl zerolog.Logger
}

// ParseLogLevel converts a string to a LogLevel.
// Accepts: "DEBUG", "INFO", "WARNING"/"WARN", "ERROR".
// Unknown values fall back to LevelInfo.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New creates a logger writing human-readable lines to stderr and, when
// logFile is set, JSON lines to that file. A log file that cannot be opened
// is reported on stderr and skipped.
func New(logFile string, level LogLevel) *Logger {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}
	if strings.TrimSpace(logFile) != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err == nil {
			writers = append(writers, file)
		} else {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", logFile, err)
		}
	}
	return newLogger(zerolog.MultiLevelWriter(writers...), level)
}

// NewWriter creates a logger that writes JSON lines to w.
func NewWriter(w io.Writer, level LogLevel) *Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level LogLevel) *Logger {
	zl := zerolog.New(w).Level(level.zerologLevel()).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// WithComponent returns a child logger tagging every line with component.
func (l *Logger) WithComponent(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// Debugf logs a debug message with formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}

// Infof logs an info message with formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.zl.Info().Msgf(format, args...)
}

// Warnf logs a warning message with formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.zl.Warn().Msgf(format, args...)
}

// Errorf logs an error message with formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.zl.Error().Msgf(format, args...)
}
