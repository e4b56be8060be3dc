package detype

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/fsutil"
)

// ErrModified reports an input that changed on disk while it was being
// transformed in place.
var ErrModified = errors.New("file modified during transform")

var outputExtensions = map[string]string{
	".ts":  ".js",
	".mts": ".mjs",
	".cts": ".cjs",
	".tsx": ".jsx",
}

// OutputPath returns the JavaScript counterpart of a typed file name.
// Component files and unknown extensions keep their name.
func OutputPath(in string) string {
	ext := filepath.Ext(in)
	if js, ok := outputExtensions[strings.ToLower(ext)]; ok {
		return strings.TrimSuffix(in, ext) + js
	}
	return in
}

// TransformFile transforms the file at in and writes the result to out.
// Formatter configuration found next to in is applied below the options in
// opts. Nothing is written when any step fails.
func (t *Transformer) TransformFile(ctx context.Context, in, out string, opts TransformOptions) error {
	return t.processFile(ctx, in, out, opts.FormatterOptions, func(text string, formatterOptions format.Options) (string, error) {
		opts.FormatterOptions = formatterOptions
		return t.Transform(ctx, text, in, opts)
	})
}

// RemoveMagicCommentsFromFile removes directive blocks from the file at in
// and writes the result to out.
func (t *Transformer) RemoveMagicCommentsFromFile(ctx context.Context, in, out string, formatterOptions format.Options) error {
	return t.processFile(ctx, in, out, formatterOptions, func(text string, resolved format.Options) (string, error) {
		return t.RemoveMagicComments(ctx, text, in, resolved)
	})
}

func (t *Transformer) processFile(
	ctx context.Context,
	in, out string,
	formatterOptions format.Options,
	run func(text string, formatterOptions format.Options) (string, error),
) error {
	logger := logging.FromContext(ctx)

	text, info, err := fsutil.ReadText(ctx, in)
	if err != nil {
		return err
	}

	merged, err := FormatterOptionsFor(ctx, in, formatterOptions)
	if err != nil {
		return err
	}

	result, err := run(text, merged)
	if err != nil {
		return err
	}

	wrote, err := WriteOutput(ctx, info, out, result)
	if err != nil {
		return err
	}
	logger.Debug("wrote output", logging.FieldInput, in, logging.FieldOutput, out, logging.FieldChanged, wrote)
	return nil
}

// WriteOutput writes result to out atomically with the mode of the input
// described by info, and reports whether out changed. When out is the input
// itself, it fails with ErrModified if the input changed since it was read.
func WriteOutput(ctx context.Context, info *fsutil.FileInfo, out, result string) (bool, error) {
	if sameFile(info.Path, out) {
		modified, err := fsutil.CheckModified(ctx, info)
		if err != nil {
			return false, err
		}
		if modified {
			return false, fmt.Errorf("%s: %w", out, ErrModified)
		}
	}

	wrote, err := fsutil.WriteAtomicIfChanged(ctx, out, []byte(result), info.Mode.Perm())
	if err != nil {
		return false, fmt.Errorf("write %s: %w", out, err)
	}
	return wrote, nil
}

// FormatterOptionsFor returns the formatter configuration found next to in,
// with opts applied on top.
func FormatterOptionsFor(ctx context.Context, in string, opts format.Options) (format.Options, error) {
	resolved, configPath, err := format.ResolveConfig(in)
	if err != nil {
		return nil, fmt.Errorf("resolve formatter config for %s: %w", in, err)
	}
	if configPath != "" {
		logging.FromContext(ctx).Debug("formatter config", logging.FieldPath, in, logging.FieldConfig, configPath)
	}
	merged := make(format.Options, len(resolved)+len(opts))
	maps.Copy(merged, resolved)
	maps.Copy(merged, opts)
	return merged, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// TransformFile transforms a file with the default Transformer.
func TransformFile(ctx context.Context, in, out string, opts TransformOptions) error {
	return defaultTransformer.TransformFile(ctx, in, out, opts)
}

// RemoveMagicCommentsFromFile removes directive blocks from a file with the
// default Transformer.
func RemoveMagicCommentsFromFile(ctx context.Context, in, out string, formatterOptions format.Options) error {
	return defaultTransformer.RemoveMagicCommentsFromFile(ctx, in, out, formatterOptions)
}
