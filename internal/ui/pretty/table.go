package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/detype/pkg/runner"
)

// Table formatting constants.
const (
	cachedSymbol      = "*"
	tablePadding      = 2
	tableColumnCount  = 3 // INPUT, OUTPUT, STATUS
	cachedColumnWidth = 3 // width for cached indicator column
	minInputWidth     = 20
	minOutputWidth    = 20
	statusWidth       = 9 // len("unchanged")
	heavySeparator    = "="
	defaultTermWidth  = 100
)

// TableRow represents a single row in the outcome table.
type TableRow struct {
	Input  string
	Output string
	Status Status
	Cached bool
}

// TableFormatter formats run outcomes as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats runner results as a styled table, one row per file.
func (t *TableFormatter) FormatTable(result *runner.Result, workDir string, dryRun bool) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(result.Files))
	for _, o := range result.Files {
		rows = append(rows, OutcomeToTableRow(o, workDir, dryRun))
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

type columnWidths struct {
	input  int
	output int
}

// calculateColumnWidths determines optimal column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		input:  minInputWidth,
		output: minOutputWidth,
	}

	for _, row := range rows {
		widths.input = max(widths.input, len(row.Input))
		widths.output = max(widths.output, len(row.Output))
	}

	// Constrain to terminal width, shrinking the output column first.
	totalWidth := t.calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.output = max(minOutputWidth, widths.output-excess)

		totalWidth = t.calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.input = max(minInputWidth, widths.input-excess)
		}
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.input + widths.output + statusWidth +
		(tablePadding * tableColumnCount) + cachedColumnWidth
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s   ",
		widths.input, "INPUT",
		widths.output, "OUTPUT",
		statusWidth, "STATUS",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	sep := strings.Repeat(char, t.calculateTotalWidth(widths))
	return t.styles.TableSeparator.Render(sep)
}

// formatRow formats a single table row with status-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	cached := " "
	if row.Cached {
		cached = t.styles.TableCached.Render(cachedSymbol)
	}

	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %s",
		widths.input, truncateFilePath(row.Input, widths.input),
		widths.output, truncateFilePath(row.Output, widths.output),
		statusWidth, string(row.Status),
		cached,
	)

	return t.getRowStyle(row.Status).Render(content)
}

// getRowStyle returns the appropriate style for a status.
func (t *TableFormatter) getRowStyle(status Status) lipgloss.Style {
	switch status {
	case StatusFailed:
		return t.styles.TableFailedRow
	case StatusWritten:
		return t.styles.TableWrittenRow
	default:
		return lipgloss.NewStyle()
	}
}

// formatLegend formats the legend explaining the table symbols.
func (t *TableFormatter) formatLegend() string {
	symbol := cachedSymbol
	if t.colorEnabled {
		symbol = t.styles.TableCached.Render(cachedSymbol)
	}
	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = from cache", symbol))
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats, duration string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d files transformed", stats.FilesTransformed))

	if stats.FilesWritten > 0 {
		parts = append(parts, t.styles.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten)))
	}
	if stats.FilesFailed > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d failed", stats.FilesFailed)))
	}
	if stats.CacheHits > 0 {
		parts = append(parts, t.styles.TableCached.Render(fmt.Sprintf("%d cached", stats.CacheHits)))
	}
	if duration != "" {
		parts = append(parts, t.styles.Dim.Render(duration))
	}

	return " " + strings.Join(parts, " | ")
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// OutcomeToTableRow converts a file outcome to a table row.
func OutcomeToTableRow(o runner.FileOutcome, workDir string, dryRun bool) TableRow {
	return TableRow{
		Input:  DisplayPath(o.Input, workDir),
		Output: DisplayPath(o.Output, workDir),
		Status: OutcomeStatus(o, dryRun),
		Cached: o.CacheHit,
	}
}
