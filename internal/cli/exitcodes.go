package cli

import (
	"errors"

	"github.com/yaklabco/detype/pkg/fsutil"
	"github.com/yaklabco/detype/pkg/runner"
)

// Exit codes for detype.
const (
	// ExitSuccess indicates every file was transformed.
	ExitSuccess = 0

	// ExitTransformFailed indicates the run completed but some files failed.
	ExitTransformFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrTransformFailed is returned when at least one file failed. It only
// signals the exit code; the failures were already reported.
var ErrTransformFailed = errors.New("transform failed")

// ExitError attaches an exit code to an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// withCode wraps err with an exit code, keeping nil as nil.
func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCodeFromResult determines the exit code of a completed run.
func ExitCodeFromResult(result *runner.Result) int {
	if result.HasFailures() {
		return ExitTransformFailed
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	switch {
	case errors.Is(err, ErrTransformFailed):
		return ExitTransformFailed
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, runner.ErrNoInput),
		errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
