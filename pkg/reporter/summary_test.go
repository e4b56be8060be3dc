package reporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/runner"
)

func TestPadding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "  ab", padLeft("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	assert.Equal(t, "abcdef", padLeft("abcdef", 4))
}

func TestTotalsByKind(t *testing.T) {
	t.Parallel()

	assert.Nil(t, TotalsByKind(nil))

	result := &runner.Result{Files: []runner.FileOutcome{
		{Job: runner.Job{Kind: langdetect.KindVue}, Written: true},
		{Job: runner.Job{Kind: langdetect.KindTypeScript}, Written: true, CacheHit: true},
		{Job: runner.Job{Kind: langdetect.KindTypeScript}, Error: errors.New("boom")},
		{Job: runner.Job{Kind: langdetect.KindVue}},
	}}

	assert.Equal(t, []KindTotals{
		{Kind: langdetect.KindTypeScript, Files: 2, Written: 1, Failed: 1, Cached: 1},
		{Kind: langdetect.KindVue, Files: 2, Written: 1},
	}, TotalsByKind(result))
}

func TestSourceLine(t *testing.T) {
	t.Parallel()

	text := "one\r\ntwo  \nthree"
	assert.Equal(t, "one", sourceLine(text, 1))
	assert.Equal(t, "two", sourceLine(text, 2))
	assert.Equal(t, "three", sourceLine(text, 3))
	assert.Empty(t, sourceLine(text, 0))
	assert.Empty(t, sourceLine(text, 4))
}
