package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yaklabco/detype/internal/ui/pretty"
	"github.com/yaklabco/detype/pkg/runner"
	"github.com/yaklabco/detype/pkg/tsstrip"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	DryRun  bool             `json:"dryRun,omitempty"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Input    string     `json:"input"`
	Output   string     `json:"output"`
	Kind     string     `json:"kind"`
	Status   string     `json:"status"`
	Written  bool       `json:"written"`
	CacheHit bool       `json:"cacheHit,omitempty"`
	Error    *JSONError `json:"error,omitempty"`
	Diff     *JSONDiff  `json:"diff,omitempty"`
}

// JSONError describes why a file failed.
type JSONError struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSONDiff is a unified diff of one file.
type JSONDiff struct {
	Inserted int    `json:"inserted"`
	Deleted  int    `json:"deleted"`
	Unified  string `json:"unified"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered  int `json:"filesDiscovered"`
	FilesTransformed int `json:"filesTransformed"`
	FilesWritten     int `json:"filesWritten"`
	FilesUnchanged   int `json:"filesUnchanged"`
	FilesFailed      int `json:"filesFailed"`
	CacheHits        int `json:"cacheHits"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesFailed, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		DryRun:  r.opts.DryRun,
		Files:   make([]JSONFileResult, 0),
	}

	if result == nil {
		return output
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))
	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Input:    pretty.DisplayPath(file.Input, r.opts.WorkingDir),
			Output:   pretty.DisplayPath(file.Output, r.opts.WorkingDir),
			Kind:     file.Kind.String(),
			Status:   string(pretty.OutcomeStatus(file, r.opts.DryRun)),
			Written:  file.Written,
			CacheHit: file.CacheHit,
		}

		if file.Error != nil {
			fileResult.Error = jsonError(file.Error)
		}

		if file.Diff != nil {
			fileResult.Diff = &JSONDiff{
				Inserted: file.Diff.Inserted,
				Deleted:  file.Diff.Deleted,
				Unified:  file.Diff.String(),
			}
		}

		output.Files = append(output.Files, fileResult)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		FilesDiscovered:  stats.FilesDiscovered,
		FilesTransformed: stats.FilesTransformed,
		FilesWritten:     stats.FilesWritten,
		FilesUnchanged:   stats.FilesUnchanged,
		FilesFailed:      stats.FilesFailed,
		CacheHits:        stats.CacheHits,
	}

	return output
}

func jsonError(err error) *JSONError {
	out := &JSONError{Message: err.Error()}
	var syntaxErr *tsstrip.SyntaxError
	if errors.As(err, &syntaxErr) {
		out.Line = syntaxErr.Line
		out.Column = syntaxErr.Column
	}
	return out
}
