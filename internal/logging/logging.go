// Package logging provides leveled logging for musicfs.
//
// The level comes from the LOG_LEVEL environment variable (debug, info,
// warn, error) or DEBUG=1, and can be overridden with SetLevel once the
// configuration is loaded. Output goes to stderr so generated documents
// written to stdout stay clean.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	level     = new(slog.LevelVar)
	logger    *slog.Logger
	setupOnce sync.Once
	mu        sync.Mutex
)

func setup() {
	setupOnce.Do(func() {
		level.Set(toSlog(levelFromEnv()))
		logger = newLogger(os.Stderr)
	})
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func levelFromEnv() LogLevel {
	if debug := os.Getenv("DEBUG"); debug != "" {
		switch strings.ToLower(debug) {
		case "1", "true", "yes", "on":
			return LevelDebug
		}
	}
	l, ok := ParseLevel(os.Getenv("LOG_LEVEL"))
	if !ok {
		return LevelInfo
	}
	return l
}

// ParseLevel parses a level name. Unknown names report false.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

func toSlog(l LogLevel) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the current log level.
func SetLevel(l LogLevel) {
	setup()
	level.Set(toSlog(l))
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	setup()
	switch l := level.Level(); {
	case l <= slog.LevelDebug:
		return LevelDebug
	case l <= slog.LevelInfo:
		return LevelInfo
	case l <= slog.LevelWarn:
		return LevelWarn
	default:
		return LevelError
	}
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	setup()
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func log(l slog.Level, format string, args ...any) {
	setup()
	mu.Lock()
	lg := logger
	mu.Unlock()
	if !lg.Enabled(context.Background(), l) {
		return
	}
	lg.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

// Debug logs a debug message
func Debug(format string, args ...any) {
	log(slog.LevelDebug, format, args...)
}

// Info logs an info message
func Info(format string, args ...any) {
	log(slog.LevelInfo, format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...any) {
	log(slog.LevelWarn, format, args...)
}

// Error logs an error message
func Error(format string, args ...any) {
	log(slog.LevelError, format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
