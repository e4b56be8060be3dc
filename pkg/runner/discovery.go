package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/detype/pkg/detype"
	"github.com/yaklabco/detype/pkg/glob"
	"github.com/yaklabco/detype/pkg/langdetect"
)

// ErrNoInput is returned when the input path does not exist.
var ErrNoInput = errors.New("input not found")

// Job is one file to transform and where its output goes.
type Job struct {
	Input  string
	Output string
	Kind   langdetect.Kind
}

// Plan resolves opts into jobs sorted by input path. A file input yields one
// job; a directory input yields a job for every eligible file below it, with
// outputs mirroring the tree under Output.
func Plan(ctx context.Context, opts Options) ([]Job, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	input := absolute(workDir, opts.Input)
	output := ""
	if opts.Output != "" {
		output = absolute(workDir, opts.Output)
	}

	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoInput, opts.Input)
		}
		return nil, fmt.Errorf("stat %s: %w", opts.Input, err)
	}

	if !info.IsDir() {
		kind := langdetect.KindOf(input)
		if !eligible(input, kind, opts) {
			return nil, nil
		}
		out := output
		switch {
		case out == "":
			out = outputName(input, opts.Mode)
		case isDir(out):
			out = filepath.Join(out, outputName(filepath.Base(input), opts.Mode))
		}
		return []Job{{Input: input, Output: out, Kind: kind}}, nil
	}

	if output == "" {
		output = input
	}
	files, err := walkDirectory(ctx, input, input, opts)
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(input, f)
		if err != nil {
			return nil, fmt.Errorf("relative path of %s: %w", f, err)
		}
		jobs = append(jobs, Job{
			Input:  f,
			Output: filepath.Join(output, outputName(rel, opts.Mode)),
			Kind:   langdetect.KindOf(f),
		})
	}
	slices.SortFunc(jobs, func(a, b Job) int { return strings.Compare(a.Input, b.Input) })
	return jobs, nil
}

func outputName(name string, mode Mode) string {
	if mode == ModeMagic {
		return name
	}
	return detype.OutputPath(name)
}

func absolute(workDir, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(workDir, p)
	}
	return filepath.Clean(p)
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// eligible reports whether a file of kind is transformed in this run.
// Declaration files hold no runtime code and are never transformed.
func eligible(path string, kind langdetect.Kind, opts Options) bool {
	if langdetect.IsDeclaration(path) {
		return false
	}
	switch kind {
	case langdetect.KindTypeScript, langdetect.KindTSX, langdetect.KindVue:
		return true
	case langdetect.KindMarkdown:
		return opts.Markdown && opts.Mode == ModeTransform
	}
	return false
}

// walkDirectory recursively walks root and returns the eligible files.
// Patterns are matched against paths relative to base.
func walkDirectory(ctx context.Context, root, base string, opts Options) ([]string, error) {
	var files []string
	excludes := append(DefaultExcludes(), opts.ExcludeGlobs...)

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		relPath, relErr := filepath.Rel(base, path)
		if relErr != nil {
			relPath = path
		}

		if entry.IsDir() {
			if path != root && strings.HasPrefix(entry.Name(), ".") {
				return filepath.SkipDir
			}
			if path != root && glob.Any(relPath, excludes) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			realPath, evalErr := filepath.EvalSymlinks(path)
			if evalErr != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			info, statErr := os.Stat(realPath)
			if statErr != nil {
				return nil //nolint:nilerr // unreadable symlink targets are skipped
			}
			if info.IsDir() {
				if !opts.FollowSymlinks {
					return nil
				}
				// Walk the target; WalkDir does not descend into symlinks.
				sub, err := walkDirectory(ctx, realPath, realPath, opts)
				if err != nil {
					return err
				}
				for _, f := range sub {
					rel, err := filepath.Rel(realPath, f)
					if err != nil {
						return fmt.Errorf("relative path of %s: %w", f, err)
					}
					files = append(files, filepath.Join(path, rel))
				}
				return nil
			}
		}

		if strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		if glob.Any(relPath, excludes) {
			return nil
		}
		if eligible(path, langdetect.KindOf(path), opts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return files, nil
}
