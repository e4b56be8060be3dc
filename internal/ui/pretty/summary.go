package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/detype/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files transformed (2 written, 1 unchanged), 1 failed, 2 cached".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats, dryRun bool) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No files to transform") + "\n"
	}

	var parts []string

	main := fmt.Sprintf("%d %s transformed", stats.FilesTransformed, plural(stats.FilesTransformed, wordFile, wordFiles))
	if stats.FilesFailed == 0 {
		main = s.Success.Render(main)
	}
	switch {
	case dryRun:
		main += s.Dim.Render(" (dry run, nothing written)")
	case stats.FilesTransformed > 0:
		main += fmt.Sprintf(" (%s, %d unchanged)",
			s.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten)), stats.FilesUnchanged)
	}
	parts = append(parts, main)

	if stats.FilesFailed > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesFailed)))
	}
	if stats.CacheHits > 0 {
		parts = append(parts, s.Dim.Render(fmt.Sprintf("%d cached", stats.CacheHits)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats, dryRun bool) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	builder.WriteString("  Files found:       " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesDiscovered)) + "\n")
	builder.WriteString("  Files transformed: " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesTransformed)) + "\n")

	if !dryRun {
		builder.WriteString("    Written:         " +
			s.Success.Render(strconv.Itoa(stats.FilesWritten)) + "\n")
		builder.WriteString("    Unchanged:       " +
			s.SummaryValue.Render(strconv.Itoa(stats.FilesUnchanged)) + "\n")
	}

	if stats.CacheHits > 0 {
		builder.WriteString("    From cache:      " +
			s.SummaryValue.Render(strconv.Itoa(stats.CacheHits)) + "\n")
	}

	if stats.FilesFailed > 0 {
		builder.WriteString("  Files failed:      " +
			s.Failure.Render(strconv.Itoa(stats.FilesFailed)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case stats.FilesFailed > 0:
		builder.WriteString(s.Failure.Render("Transform failed for some files"))
	case dryRun:
		builder.WriteString(s.Success.Render("Dry run complete"))
	default:
		builder.WriteString(s.Success.Render("Transform complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}
