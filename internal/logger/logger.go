// Package logger provides the structured logger used across fieldnorm. It is
// a thin wrapper around charmbracelet/log with a package-level default so
// libraries can log without threading a logger through every call.
package logger

import (
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

func (l LogLevel) toCharm() charmlog.Level {
	switch LogLevel(strings.ToLower(string(l))) {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

type Config struct {
	Level      LogLevel
	Output     io.Writer
	JSON       bool
	TimeFormat string
}

func DefaultConfig() *Config {
	return &Config{
		Level:      InfoLevel,
		Output:     os.Stderr,
		TimeFormat: "15:04:05",
	}
}

type loggerImpl struct {
	l *charmlog.Logger
}

func (c *loggerImpl) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c *loggerImpl) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c *loggerImpl) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c *loggerImpl) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

func (c *loggerImpl) With(keyvals ...any) Logger {
	return &loggerImpl{l: c.l.With(keyvals...)}
}

// NewLogger builds a Logger from cfg (nil selects DefaultConfig).
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	l := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           cfg.Level.toCharm(),
	})
	if cfg.JSON {
		l.SetFormatter(charmlog.JSONFormatter)
	} else {
		l.SetFormatter(charmlog.TextFormatter)
	}
	return &loggerImpl{l: l}
}

var defaultLogger = NewLogger(nil)

// Init replaces the package-level default logger.
func Init(cfg *Config) {
	defaultLogger = NewLogger(cfg)
}

// SetupLogger configures the default logger from CLI flag values and
// returns it.
func SetupLogger(level string, json bool, out io.Writer) Logger {
	Init(&Config{
		Level:      LogLevel(level),
		Output:     out,
		JSON:       json,
		TimeFormat: "15:04:05",
	})
	return defaultLogger
}

// Default returns the package-level logger.
func Default() Logger { return defaultLogger }

// Discard returns a Logger that drops everything; handy in tests.
func Discard() Logger {
	return NewLogger(&Config{Output: io.Discard, Level: ErrorLevel})
}
