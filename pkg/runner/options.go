// Package runner transforms a file or a whole directory tree, one file per
// worker, and reports per-file outcomes in a deterministic order.
package runner

import (
	"github.com/yaklabco/detype/pkg/detype"
)

// Mode selects what the runner does to each file.
type Mode int

const (
	// ModeTransform removes types and renames outputs (.ts to .js).
	ModeTransform Mode = iota

	// ModeMagic only resolves @detype directive blocks; names are kept.
	ModeMagic
)

func (m Mode) String() string {
	if m == ModeMagic {
		return "magic"
	}
	return "transform"
}

// Options control one run.
type Options struct {
	// Input is a file or a directory.
	Input string

	// Output is the destination file or directory. Empty writes next to
	// the input: foo.ts becomes foo.js, and in ModeMagic the input itself is
	// rewritten.
	Output string

	// WorkingDir resolves relative paths. Empty means the process working
	// directory.
	WorkingDir string

	// ExcludeGlobs skip files and directories, matched against paths
	// relative to the input directory.
	ExcludeGlobs []string

	// Markdown includes Markdown files, whose typed fenced code blocks are
	// transformed.
	Markdown bool

	// FollowSymlinks walks directory symlinks.
	FollowSymlinks bool

	// Jobs bounds the number of files processed at once. 0 or negative
	// means runtime.NumCPU().
	Jobs int

	Mode Mode

	// DryRun computes outputs without writing them.
	DryRun bool

	// Diff records a diff between each input and its output.
	Diff bool

	Transform detype.TransformOptions
}

// DefaultExcludes are skipped in every directory walk.
func DefaultExcludes() []string {
	return []string{"**/node_modules"}
}
