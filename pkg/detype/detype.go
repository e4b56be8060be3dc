// Package detype converts TypeScript, TSX and typed single-file components
// into JavaScript that keeps the original layout.
//
// Plain typed files go straight through the type removal engine. Component
// files are split into regions, each typed region is stripped on its own, and
// the results are spliced back into the untouched remainder of the file. The
// output of both paths is passed through a formatter last.
package detype

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/directive"
	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/fsutil"
	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/tsstrip"
	"github.com/yaklabco/detype/pkg/typestrip"
	"github.com/yaklabco/detype/pkg/vuecompile"
)

// TransformOptions control one transformation.
type TransformOptions struct {
	// RemoveTSComments drops @ts-ignore and @ts-expect-error comments.
	RemoveTSComments bool

	// CustomizeConfig is handed the backend configuration before every type
	// removal run.
	CustomizeConfig func(cfg *typestrip.Config)

	// FormatterOptions are passed to the formatter unchanged.
	FormatterOptions format.Options
}

// Transformer carries the collaborators of a transformation. A zero
// Transformer uses the tree-sitter backend, the basic formatter and the
// builtin script compiler.
type Transformer struct {
	Engine    *typestrip.Engine
	Formatter format.Formatter
	Compiler  vuecompile.Compiler

	// SourceFS resolves relative type imports of components, with file IDs
	// taken as slash-separated paths inside it. Nil uses the host file system.
	SourceFS fs.FS
}

var defaultTransformer = &Transformer{}

// New creates a Transformer that formats with formatter.
func New(formatter format.Formatter) *Transformer {
	return &Transformer{Formatter: formatter}
}

func (t *Transformer) engine() *typestrip.Engine {
	if t.Engine == nil {
		return typestrip.New(tsstrip.New())
	}
	return t.Engine
}

func (t *Transformer) formatter() format.Formatter {
	if t.Formatter == nil {
		return format.Basic{}
	}
	return t.Formatter
}

func (t *Transformer) compiler() vuecompile.Compiler {
	if t.Compiler == nil {
		return vuecompile.NewBuiltin()
	}
	return t.Compiler
}

func (o TransformOptions) engineOptions(extra ...typestrip.Plugin) typestrip.Options {
	return typestrip.Options{
		RemoveTSComments: o.RemoveTSComments,
		CustomizeConfig: func(cfg *typestrip.Config) {
			cfg.Plugins = append(cfg.Plugins, extra...)
			if o.CustomizeConfig != nil {
				o.CustomizeConfig(cfg)
			}
		},
	}
}

// Transform removes the types from text. fileID selects the handling by its
// extension and names the file to the formatter.
func (t *Transformer) Transform(ctx context.Context, text, fileID string, opts TransformOptions) (string, error) {
	text = fsutil.NormalizeNewlines(text)
	kind := langdetect.KindOf(fileID)

	logging.FromContext(ctx).Debug("transforming",
		logging.FieldPath, fileID,
		logging.FieldKind, kind.String(),
		logging.FieldRemoveTSComments, opts.RemoveTSComments)

	code := text
	switch {
	case kind == langdetect.KindVue:
		out, err := t.transformComponentFile(ctx, text, fileID, opts)
		if err != nil {
			return "", err
		}
		code = out
	case kind.Typed():
		out, err := t.engine().RemoveTypes(ctx, text, fileID, opts.engineOptions())
		if err != nil {
			return "", err
		}
		code = out
	}

	return t.format(ctx, code, fileID, opts.FormatterOptions)
}

// RemoveMagicComments resolves every @detype directive block to its real
// implementation and formats the result. Types are left alone.
func (t *Transformer) RemoveMagicComments(ctx context.Context, text, fileID string, formatterOptions format.Options) (string, error) {
	return t.format(ctx, directive.Remove(fsutil.NormalizeNewlines(text)), fileID, formatterOptions)
}

func (t *Transformer) format(ctx context.Context, code, fileID string, opts format.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("format %s: %w", fileID, err)
	}
	out, err := t.formatter().Format(ctx, code, fileID, opts)
	if err != nil {
		return "", fmt.Errorf("format %s: %w", fileID, err)
	}
	return out, nil
}

// Transform removes types with the default Transformer.
func Transform(ctx context.Context, text, fileID string, opts TransformOptions) (string, error) {
	return defaultTransformer.Transform(ctx, text, fileID, opts)
}

// RemoveMagicComments removes directive blocks with the default Transformer.
func RemoveMagicComments(ctx context.Context, text, fileID string, formatterOptions format.Options) (string, error) {
	return defaultTransformer.RemoveMagicComments(ctx, text, fileID, formatterOptions)
}
