package reporter

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/detype/internal/ui/pretty"
	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/runner"
)

// Table layout constants for summary output.
const (
	tableWidth   = 52
	kindColWidth = 16
	numColWidth  = 8
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// KindTotals counts outcomes for one kind of file.
type KindTotals struct {
	Kind    langdetect.Kind
	Files   int
	Written int
	Failed  int
	Cached  int
}

// TotalsByKind groups outcomes by file kind, ordered by kind.
func TotalsByKind(result *runner.Result) []KindTotals {
	if result == nil {
		return nil
	}

	byKind := make(map[langdetect.Kind]*KindTotals)
	for _, file := range result.Files {
		totals, ok := byKind[file.Kind]
		if !ok {
			totals = &KindTotals{Kind: file.Kind}
			byKind[file.Kind] = totals
		}
		totals.Files++
		switch {
		case file.Error != nil:
			totals.Failed++
		case file.Written:
			totals.Written++
		}
		if file.CacheHit {
			totals.Cached++
		}
	}

	out := make([]KindTotals, 0, len(byKind))
	for _, totals := range byKind {
		out = append(out, *totals)
	}
	slices.SortFunc(out, func(a, b KindTotals) int { return int(a.Kind) - int(b.Kind) })
	return out
}

// SummaryReporter formats results as aggregated tables without per-file
// lines.
type SummaryReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewSummaryReporter creates a new summary reporter.
func NewSummaryReporter(opts Options) *SummaryReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SummaryReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		fmt.Fprintln(r.bw, r.styles.Dim.Render("No files to transform."))
		return 0, nil
	}

	r.renderKindTable(TotalsByKind(result))
	fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats, r.opts.DryRun))

	return failures(result), nil
}

func (r *SummaryReporter) renderKindTable(kinds []KindTotals) {
	fmt.Fprintln(r.bw, r.styles.Bold.Render("Files by kind"))
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	// Header - pad first, then style
	fmt.Fprintf(r.bw, "%s %s %s %s %s\n",
		r.styles.TableHeader.Render(padRight("Kind", kindColWidth)),
		r.styles.TableHeader.Render(padLeft("Files", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Written", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Failed", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Cached", numColWidth)),
	)
	fmt.Fprintln(r.bw, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	for _, kind := range kinds {
		name := padRight(kind.Kind.String(), kindColWidth)
		if kind.Failed > 0 {
			name = r.styles.TableFailedRow.Render(name)
		}

		fmt.Fprintf(r.bw, "%s %s %s %s %s\n",
			name,
			padLeft(strconv.Itoa(kind.Files), numColWidth),
			padLeft(strconv.Itoa(kind.Written), numColWidth),
			padLeft(strconv.Itoa(kind.Failed), numColWidth),
			padLeft(strconv.Itoa(kind.Cached), numColWidth),
		)
	}
}
