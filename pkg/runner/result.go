package runner

import (
	"github.com/yaklabco/detype/pkg/textdiff"
)

// FileOutcome is the result of one job.
type FileOutcome struct {
	Job

	// Written is set when the output file was created or changed.
	Written bool

	// CacheHit is set when the output came from the cache.
	CacheHit bool

	// Diff is the change from input to output, when requested.
	Diff *textdiff.Diff

	// Error is set if the file could not be transformed or written.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered  int
	FilesTransformed int
	FilesWritten     int
	FilesUnchanged   int
	FilesFailed      int
	CacheHits        int
}

// Result is the overall runner result.
type Result struct {
	// Files holds one outcome per job, ordered by input path.
	Files []FileOutcome

	Stats Stats
}

// HasFailures reports whether any file failed.
func (r *Result) HasFailures() bool {
	return r != nil && r.Stats.FilesFailed > 0
}

// Failures returns the outcomes that carry an error.
func (r *Result) Failures() []FileOutcome {
	if r == nil {
		return nil
	}
	var out []FileOutcome
	for _, f := range r.Files {
		if f.Error != nil {
			out = append(out, f)
		}
	}
	return out
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesFailed++
		return
	}
	r.Stats.FilesTransformed++
	if outcome.CacheHit {
		r.Stats.CacheHits++
	}
	if outcome.Written {
		r.Stats.FilesWritten++
	} else {
		r.Stats.FilesUnchanged++
	}
}
