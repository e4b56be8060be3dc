package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/reporter"
	"github.com/yaklabco/detype/pkg/runner"
	"github.com/yaklabco/detype/pkg/textdiff"
	"github.com/yaklabco/detype/pkg/tsstrip"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "diff", input: "diff", want: reporter.FormatDiff},
		{name: "summary", input: "summary", want: reporter.FormatSummary},
		{name: "unknown format", input: "xml", wantErr: true},
		{name: "unsupported", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_IsValid(t *testing.T) {
	tests := []struct {
		format reporter.Format
		want   bool
	}{
		{reporter.FormatText, true},
		{reporter.FormatJSON, true},
		{reporter.FormatTable, true},
		{reporter.FormatDiff, true},
		{reporter.FormatSummary, true},
		{reporter.Format("unknown"), false},
		{reporter.Format(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "table reporter", format: reporter.FormatTable},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "diff reporter", format: reporter.FormatDiff},
		{name: "summary reporter", format: reporter.FormatSummary},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := reporter.Options{
				Writer: &buf,
				Format: tt.format,
				Color:  "never",
			}

			rep, err := reporter.New(opts)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, rep)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := reporter.DefaultOptions()

	assert.Equal(t, os.Stdout, opts.Writer)
	assert.Equal(t, os.Stderr, opts.ErrorWriter)
	assert.Equal(t, reporter.FormatText, opts.Format)
	assert.Equal(t, "auto", opts.Color)
	assert.True(t, opts.ShowContext)
	assert.True(t, opts.ShowSummary)
	assert.False(t, opts.Verbose)
}

func TestTextReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
	})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), "No files to transform")
}

func TestTextReporter_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		WorkingDir:  "/work",
	})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "src/a.ts -> src/a.js  written")
	assert.Contains(t, output, "src/bad.ts  error  boom")
	assert.NotContains(t, output, "src/same.ts", "unchanged files are hidden unless verbose")
	assert.Contains(t, output, "2 files transformed (1 written, 1 unchanged), 1 failed")
}

func TestTextReporter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:     &buf,
		Color:      "never",
		Verbose:    true,
		WorkingDir: "/work",
	})

	_, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "src/same.vue  unchanged")
	assert.NotContains(t, buf.String(), "files transformed")
}

func TestTextReporter_SourceContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ts")
	require.NoError(t, os.WriteFile(path, []byte("const x = 1\n\nconst = ;\n"), 0o644))

	syntaxErr := &tsstrip.SyntaxError{Filename: path, Line: 3, Column: 7, Reason: "unexpected input"}
	result := &runner.Result{
		Files: []runner.FileOutcome{{
			Job:   runner.Job{Input: path, Output: filepath.Join(dir, "bad.js"), Kind: langdetect.KindTypeScript},
			Error: fmt.Errorf("remove types from %s: %w", path, syntaxErr),
		}},
		Stats: runner.Stats{FilesDiscovered: 1, FilesFailed: 1},
	}

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowContext: true,
		WorkingDir:  dir,
	})

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "  bad.ts  error"))
	assert.Equal(t, "        const = ;", lines[1])
	assert.Equal(t, "              ^", lines[2])
}

func TestTextReporter_DryRunShowsDiff(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer: &buf,
		Color:  "never",
		DryRun: true,
	})

	result := &runner.Result{
		Files: []runner.FileOutcome{{
			Job:  runner.Job{Input: "a.ts", Output: "a.js"},
			Diff: textdiff.Compute("a.ts", "a.js", "let a: number\n", "let a\n"),
		}},
		Stats: runner.Stats{FilesDiscovered: 1, FilesTransformed: 1, FilesUnchanged: 1},
	}

	_, err := rep.Report(context.Background(), result)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "a.ts -> a.js  dry run")
	assert.Contains(t, output, "-let a: number\n+let a\n")
}

func TestJSONReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "1.0.0", output.Version)
	assert.Empty(t, output.Files)
}

func TestJSONReporter_WithOutcomes(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: "/work"})

	result := createTestResult()
	result.Files[0].Diff = textdiff.Compute("a.ts", "a.js", "let a: number\n", "let a\n")
	result.Files[1].Error = &tsstrip.SyntaxError{Filename: "/work/src/bad.ts", Line: 2, Column: 4, Reason: "x"}

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	require.Len(t, output.Files, 3)

	written := output.Files[0]
	assert.Equal(t, "src/a.ts", written.Input)
	assert.Equal(t, "src/a.js", written.Output)
	assert.Equal(t, "typescript", written.Kind)
	assert.Equal(t, "written", written.Status)
	assert.True(t, written.Written)
	require.NotNil(t, written.Diff)
	assert.Equal(t, 1, written.Diff.Inserted)
	assert.Contains(t, written.Diff.Unified, "+let a")

	failed := output.Files[1]
	assert.Equal(t, "failed", failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, 2, failed.Error.Line)
	assert.Equal(t, 4, failed.Error.Column)

	assert.Equal(t, "unchanged", output.Files[2].Status)
	assert.True(t, output.Files[2].CacheHit)
	assert.Equal(t, reporter.JSONSummary{
		FilesDiscovered: 3, FilesTransformed: 2, FilesWritten: 1,
		FilesUnchanged: 1, FilesFailed: 1, CacheHits: 1,
	}, output.Summary)
}

func TestJSONReporter_Compact(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, Compact: true})

	_, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestDiffReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(reporter.Options{Writer: &buf, Color: "never"})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, buf.String())
}

func TestDiffReporter_WithDiffs(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewDiffReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true, WorkingDir: "/work"})

	result := createTestResult()
	result.Files[0].Diff = textdiff.Compute("/work/src/a.ts", "/work/src/a.js", "let a: number\n", "let a\n")

	count, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "diff --git a/src/a.ts b/src/a.js\n--- a/src/a.ts\n+++ b/src/a.js\n")
	assert.Contains(t, output, "error: boom")
	assert.Contains(t, output, "1 file changed, 1 insertion(+), 1 deletion(-)")
}

func TestTableReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTableReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true, WorkingDir: "/work"})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "INPUT")
	assert.Contains(t, output, "src/a.ts")
	assert.Contains(t, output, "2 files transformed | 1 written | 1 failed | 1 cached")
	assert.Contains(t, output, "--format text")
}

func TestSummaryReporter(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewSummaryReporter(reporter.Options{Writer: &buf, Color: "never"})

	count, err := rep.Report(context.Background(), createTestResult())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	output := buf.String()
	assert.Contains(t, output, "Files by kind")
	assert.Contains(t, output, "typescript")
	assert.Contains(t, output, "vue")
	assert.Contains(t, output, "Transform failed for some files")
}

func TestReporter_WriteError(t *testing.T) {
	rep := reporter.NewTextReporter(reporter.Options{Writer: failingWriter{}, Color: "never", ShowSummary: true})

	_, err := rep.Report(context.Background(), createTestResult())
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

// createTestResult returns one written, one failed and one cached unchanged file.
func createTestResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Job:     runner.Job{Input: "/work/src/a.ts", Output: "/work/src/a.js", Kind: langdetect.KindTypeScript},
				Written: true,
			},
			{
				Job:   runner.Job{Input: "/work/src/bad.ts", Output: "/work/src/bad.js", Kind: langdetect.KindTypeScript},
				Error: errors.New("boom"),
			},
			{
				Job:      runner.Job{Input: "/work/src/same.vue", Output: "/work/src/same.vue", Kind: langdetect.KindVue},
				CacheHit: true,
			},
		},
		Stats: runner.Stats{
			FilesDiscovered:  3,
			FilesTransformed: 2,
			FilesWritten:     1,
			FilesUnchanged:   1,
			FilesFailed:      1,
			CacheHits:        1,
		},
	}
}
