package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"code-atlas/src/config"
)

// Logger provides leveled logging with printf-style messages
type Logger struct {
	backend hclog.Logger
}

// NewLogger creates a new logger from config
func NewLogger(cfg config.LoggingConfig) *Logger {
	return NewLoggerTo(cfg, nil)
}

// NewLoggerTo creates a logger that writes to w instead of the configured destination
func NewLoggerTo(cfg config.LoggingConfig, w io.Writer) *Logger {
	level := hclog.LevelFromString(strings.ToLower(cfg.Level))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	output := w
	if output == nil {
		output = io.Writer(os.Stderr)
		if cfg.File != "" {
			if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
				output = f
			}
		}
	}

	backend := hclog.New(&hclog.LoggerOptions{
		Name:            "code-atlas",
		Level:           level,
		Output:          output,
		JSONFormat:      cfg.Format == "json",
		DisableTime:     !cfg.IncludeTimestamp,
		IncludeLocation: cfg.IncludeCaller,
		// Skip the Logger wrapper and package-level helpers
		AdditionalLocationOffset: 2,
	})

	return &Logger{backend: backend}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	if l.backend.IsDebug() {
		l.backend.Debug(format(msg, args))
	}
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	if l.backend.IsInfo() {
		l.backend.Info(format(msg, args))
	}
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	if l.backend.IsWarn() {
		l.backend.Warn(format(msg, args))
	}
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	if l.backend.IsError() {
		l.backend.Error(format(msg, args))
	}
}

// GetLevel returns the current log level as a string
func (l *Logger) GetLevel() string {
	return l.backend.GetLevel().String()
}

func format(msg string, args []any) string {
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// DefaultLogger is the package-level default logger
var DefaultLogger = NewLogger(config.LoggingConfig{
	Level:            "info",
	IncludeTimestamp: true,
})

// SetDefaultLogger updates the default logger with new configuration
func SetDefaultLogger(cfg config.LoggingConfig) {
	DefaultLogger = NewLogger(cfg)
}

// Debug logs using the default logger
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// Info logs using the default logger
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// Warn logs using the default logger
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// Error logs using the default logger
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}
