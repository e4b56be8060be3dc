// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Environment variables read by Default.
const (
	EnvLevel  = "DETYPE_LOG_LEVEL"
	EnvFormat = "DETYPE_LOG_FORMAT"
)

// defaultLogger is the package-level default logger instance.
//
//nolint:gochecknoglobals // Package-level logger is intentional for convenience
var (
	defaultLogger     *log.Logger
	defaultLoggerOnce sync.Once
)

func getDefaultLogger() *log.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = NewWithFormat(os.Stderr, os.Getenv(EnvLevel), os.Getenv(EnvFormat))
	})
	return defaultLogger
}

// New creates a stderr text logger with the specified level.
// Valid levels: "debug", "info", "warn", "error". Anything else is info.
func New(level string) *log.Logger {
	return NewWithFormat(os.Stderr, level, "")
}

// NewWithFormat creates a logger writing to w. format is "text" (the
// default), "json" or "logfmt"; the latter two suit CI log collectors.
func NewWithFormat(w io.Writer, level, format string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
		Formatter:       parseFormatter(format),
	})

	setLoggerLevel(logger, level)

	return logger
}

func parseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

func setLoggerLevel(logger *log.Logger, level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	logger.SetLevel(parsed)
}

// NewInteractive creates a logger for user-facing CLI messages on stdout.
// It omits timestamps and reports at info level.
func NewInteractive() *log.Logger {
	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(log.InfoLevel)
	return logger
}

// Default returns the package-level default logger. Its level and format
// come from DETYPE_LOG_LEVEL and DETYPE_LOG_FORMAT on first use.
func Default() *log.Logger {
	return getDefaultLogger()
}

// SetDefault sets the package-level default logger.
func SetDefault(logger *log.Logger) {
	getDefaultLogger()
	defaultLogger = logger
}

// SetLevel updates the log level of the default logger.
func SetLevel(level string) {
	setLoggerLevel(getDefaultLogger(), level)
}
