package pretty

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/detype/pkg/runner"
	"github.com/yaklabco/detype/pkg/textdiff"
)

// Status is a file outcome as shown to the user.
type Status string

const (
	StatusFailed    Status = "failed"
	StatusWritten   Status = "written"
	StatusUnchanged Status = "unchanged"
	StatusDryRun    Status = "dry run"
)

// OutcomeStatus classifies an outcome. In a dry run nothing is written, so
// every successful file is StatusDryRun.
func OutcomeStatus(o runner.FileOutcome, dryRun bool) Status {
	switch {
	case o.Error != nil:
		return StatusFailed
	case dryRun:
		return StatusDryRun
	case o.Written:
		return StatusWritten
	default:
		return StatusUnchanged
	}
}

// DisplayPath returns path relative to workDir when it lies below it.
func DisplayPath(path, workDir string) string {
	if workDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// FormatOutcome formats one file as "input -> output  status".
func (s *Styles) FormatOutcome(o runner.FileOutcome, workDir string, dryRun bool) string {
	var builder strings.Builder

	builder.WriteString("  ")
	builder.WriteString(s.FilePath.Render(DisplayPath(o.Input, workDir)))
	if o.Output != o.Input {
		builder.WriteString(s.Arrow.Render(" -> "))
		builder.WriteString(DisplayPath(o.Output, workDir))
	}
	builder.WriteString("  ")
	builder.WriteString(s.FormatStatus(OutcomeStatus(o, dryRun)))
	if o.CacheHit {
		builder.WriteString(s.Dim.Render(" (cached)"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// FormatStatus returns a styled status word.
func (s *Styles) FormatStatus(status Status) string {
	switch status {
	case StatusFailed:
		return s.Error.Render(string(status))
	case StatusWritten:
		return s.Success.Render(string(status))
	case StatusDryRun:
		return s.Info.Render(string(status))
	default:
		return s.Dim.Render(string(status))
	}
}

// FormatFailure formats a failed file. When sourceLine is set, it is shown
// under the message with a caret at column.
func (s *Styles) FormatFailure(o runner.FileOutcome, workDir, sourceLine string, column int) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "  %s  %s  %s\n",
		s.FilePath.Render(DisplayPath(o.Input, workDir)),
		s.Error.Render("error"),
		s.Message.Render(o.Error.Error()),
	)

	if sourceLine != "" {
		builder.WriteString(s.FormatSourceContext(sourceLine, column))
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with failure output
	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatDiff renders a unified diff in git style.
func (s *Styles) FormatDiff(d *textdiff.Diff, workDir string) string {
	if d == nil {
		return ""
	}

	from := filepath.ToSlash(DisplayPath(d.From, workDir))
	to := filepath.ToSlash(DisplayPath(d.To, workDir))

	var builder strings.Builder
	builder.WriteString(s.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", from, to)) + "\n")
	builder.WriteString(s.DiffRemove.Render("--- a/"+from) + "\n")
	builder.WriteString(s.DiffAdd.Render("+++ b/"+to) + "\n")

	for _, h := range d.Hunks {
		builder.WriteString(s.DiffHunk.Render(h.Header()) + "\n")
		for _, l := range h.Lines {
			builder.WriteString(s.diffLineStyle(l.Op).Render(l.String()) + "\n")
		}
	}

	return builder.String()
}

func (s *Styles) diffLineStyle(op textdiff.Op) lipgloss.Style {
	switch op {
	case textdiff.Insert:
		return s.DiffAdd
	case textdiff.Delete:
		return s.DiffRemove
	default:
		return s.DiffContext
	}
}
