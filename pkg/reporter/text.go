package reporter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yaklabco/detype/internal/ui/pretty"
	"github.com/yaklabco/detype/pkg/fsutil"
	"github.com/yaklabco/detype/pkg/runner"
	"github.com/yaklabco/detype/pkg/tsstrip"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No files to transform."))
		}
		return 0, nil
	}

	for _, file := range result.Files {
		if file.Error != nil {
			line, column := r.sourceContext(ctx, file)
			fmt.Fprint(r.bw, r.styles.FormatFailure(file, r.opts.WorkingDir, line, column))
			continue
		}

		if !r.opts.Verbose && !file.Written && !r.opts.DryRun {
			continue
		}
		fmt.Fprint(r.bw, r.styles.FormatOutcome(file, r.opts.WorkingDir, r.opts.DryRun))

		if file.Diff != nil {
			fmt.Fprint(r.bw, r.styles.FormatDiff(file.Diff, r.opts.WorkingDir))
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.DryRun))
	}

	return failures(result), nil
}

// sourceContext returns the line a syntax error points at in the input
// file, and the error column. It returns "" when the error carries no
// position in that file.
func (r *TextReporter) sourceContext(ctx context.Context, file runner.FileOutcome) (string, int) {
	if !r.opts.ShowContext {
		return "", 0
	}

	var syntaxErr *tsstrip.SyntaxError
	if !errors.As(file.Error, &syntaxErr) || syntaxErr.Line == 0 {
		return "", 0
	}
	if filepath.Clean(syntaxErr.Filename) != filepath.Clean(file.Input) {
		return "", 0
	}

	text, _, err := fsutil.ReadText(ctx, file.Input)
	if err != nil {
		return "", 0
	}
	return sourceLine(text, syntaxErr.Line), syntaxErr.Column
}

// sourceLine returns the 1-based line n of text, or "" if out of range.
func sourceLine(text string, n int) string {
	lines := strings.Split(fsutil.NormalizeNewlines(text), "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[n-1], " \t")
}
