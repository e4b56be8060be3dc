package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/detype/internal/logging"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		level    string
		expected log.Level
	}{
		{"debug level", "debug", log.DebugLevel},
		{"info level", "info", log.InfoLevel},
		{"warn level", "warn", log.WarnLevel},
		{"warning level", "warning", log.WarnLevel},
		{"error level", "error", log.ErrorLevel},
		{"invalid defaults to info", "invalid", log.InfoLevel},
		{"empty defaults to info", "", log.InfoLevel},
		{"case insensitive DEBUG", "DEBUG", log.DebugLevel},
		{"case insensitive Info", "Info", log.InfoLevel},
		{"surrounding space", " warn ", log.WarnLevel},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(testCase.level)
			if logger == nil {
				t.Fatal("New returned nil logger")
			}

			if logger.GetLevel() != testCase.expected {
				t.Errorf("expected level %v, got %v", testCase.expected, logger.GetLevel())
			}
		})
	}
}

func TestNewWithFormat(t *testing.T) {
	t.Parallel()

	var jsonOut bytes.Buffer
	logging.NewWithFormat(&jsonOut, "info", "json").Info("transformed", logging.FieldPath, "a.ts")

	var entry map[string]any
	if err := json.Unmarshal(jsonOut.Bytes(), &entry); err != nil {
		t.Fatalf("json output did not decode: %v (%q)", err, jsonOut.String())
	}
	if entry[logging.FieldPath] != "a.ts" {
		t.Errorf("expected path field a.ts, got %v", entry[logging.FieldPath])
	}

	var logfmtOut bytes.Buffer
	logging.NewWithFormat(&logfmtOut, "info", "logfmt").Info("transformed", logging.FieldPath, "a.ts")
	if !strings.Contains(logfmtOut.String(), logging.FieldPath+"=a.ts") {
		t.Errorf("expected logfmt pair in %q", logfmtOut.String())
	}

	var debugOut bytes.Buffer
	logging.NewWithFormat(&debugOut, "warn", "").Info("hidden")
	if debugOut.Len() != 0 {
		t.Errorf("info message logged at warn level: %q", debugOut.String())
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	logger := logging.Default()
	if logger == nil {
		t.Fatal("Default returned nil logger")
	}
}

func TestSetLevel(t *testing.T) {
	// Not parallel because it modifies global state.

	// Save original and restore after test.
	original := logging.Default()
	defer logging.SetDefault(original)

	// Create a fresh logger for testing.
	testLogger := logging.New("info")
	logging.SetDefault(testLogger)

	logging.SetLevel("debug")
	if logging.Default().GetLevel() != log.DebugLevel {
		t.Error("SetLevel to debug failed")
	}

	logging.SetLevel("error")
	if logging.Default().GetLevel() != log.ErrorLevel {
		t.Error("SetLevel to error failed")
	}
}

func TestSetDefault(t *testing.T) {
	// Not parallel because it modifies global state.

	original := logging.Default()
	defer logging.SetDefault(original)

	newLogger := logging.New("error")
	logging.SetDefault(newLogger)

	if logging.Default() != newLogger {
		t.Error("SetDefault did not change the default logger")
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	if logger == nil {
		t.Fatal("NewInteractive returned nil logger")
	}

	// Interactive loggers should default to info level
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %v", logger.GetLevel())
	}
}

func TestWithFile(t *testing.T) {
	t.Parallel()

	base := logging.New("info")
	ctx := logging.WithLogger(context.Background(), base)
	ctx = logging.WithFile(ctx, "src/a.ts")

	if logging.FromContext(ctx) == base {
		t.Error("WithFile did not derive a new logger")
	}
	if logging.FromContext(ctx).GetLevel() != log.InfoLevel {
		t.Error("WithFile changed the log level")
	}
}

func TestFromContextNil(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // nil context is handled explicitly
	if logging.FromContext(nil) == nil {
		t.Error("FromContext(nil) returned nil")
	}
}
