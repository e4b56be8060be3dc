package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/fsutil"
	"github.com/yaklabco/detype/pkg/runner"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "transform failed", err: ErrTransformFailed, want: ExitTransformFailed},
		{name: "explicit code", err: withCode(ExitConfigError, errors.New("bad")), want: ExitConfigError},
		{name: "joined code", err: errors.Join(errors.New("ctx"), withCode(ExitInvalidUsage, errors.New("bad"))), want: ExitInvalidUsage},
		{name: "no input", err: fmt.Errorf("run: %w", runner.ErrNoInput), want: ExitIOError},
		{name: "not found", err: fsutil.ErrNotFound, want: ExitIOError},
		{name: "other", err: errors.New("boom"), want: ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}

	assert.NoError(t, withCode(ExitIOError, nil))
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ExitSuccess, ExitCodeFromResult(nil))
	assert.Equal(t, ExitSuccess, ExitCodeFromResult(&runner.Result{}))
	assert.Equal(t, ExitTransformFailed, ExitCodeFromResult(&runner.Result{Stats: runner.Stats{FilesFailed: 1}}))
}

func TestParseFormatterOptions(t *testing.T) {
	t.Parallel()

	got, err := parseFormatterOptions([]string{"semi=false", "tabWidth=4", "quoteProps=as-needed", "empty="})
	require.NoError(t, err)
	assert.Equal(t, format.Options{
		"semi":       false,
		"tabWidth":   4,
		"quoteProps": "as-needed",
		"empty":      "",
	}, got)

	got, err = parseFormatterOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"semi", "=true", "x=[1"} {
		_, err := parseFormatterOptions([]string{bad})
		assert.Error(t, err, bad)
	}
}
