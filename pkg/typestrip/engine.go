// Package typestrip removes type-only syntax from typed source text while
// keeping line numbers, blank lines and comments in place.
//
// The engine wraps a Backend (the parser/printer) with the fidelity steps:
// blank-line encoding, @detype directive processing, the leading-comment
// retention rule for deleted declarations, comment filtering, and newline
// run collapsing.
package typestrip

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/blankline"
	"github.com/yaklabco/detype/pkg/directive"
)

// ErrNoOutput is returned when the backend produced no code.
var ErrNoOutput = errors.New("type removal produced no output")

// ErrNoBackend is returned by an Engine without a Backend.
var ErrNoBackend = errors.New("no type removal backend configured")

// locatedError is a backend error carrying a line in the text the backend
// was given.
type locatedError interface {
	error
	Relocate(lineOf func(int) int)
}

// RemoveMeLabel is the value given to comments scheduled for deletion.
const RemoveMeLabel = "@detype: remove-me"

var tsDirectiveComment = regexp.MustCompile(`^\s*(@ts-ignore|@ts-expect-error)`)

// Options control one RemoveTypes call.
type Options struct {
	// RemoveTSComments drops @ts-ignore and @ts-expect-error comments.
	RemoveTSComments bool

	// CustomizeConfig is called with the backend configuration before the
	// backend runs, for injecting extra plugins.
	CustomizeConfig func(cfg *Config)
}

// Engine runs type removal through a Backend.
type Engine struct {
	backend Backend
}

// New creates an Engine for backend.
func New(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// RemoveTypes strips type-only syntax from text. fileName picks the grammar.
func (e *Engine) RemoveTypes(ctx context.Context, text, fileName string, opts Options) (string, error) {
	if e == nil || e.backend == nil {
		return "", ErrNoBackend
	}
	logger := logging.FromContext(ctx)

	encoded := blankline.Encode(text)
	code := directive.Process(encoded)

	cfg := &Config{
		Filename:    fileName,
		RetainLines: true,
		Plugins:     []Plugin{CommentRemover(code)},
		ShouldPrintComment: func(value string) bool {
			if value == RemoveMeLabel {
				return false
			}
			return !opts.RemoveTSComments || !tsDirectiveComment.MatchString(value)
		},
	}
	if opts.CustomizeConfig != nil {
		opts.CustomizeConfig(cfg)
	}

	logger.Debug("removing types", logging.FieldPath, fileName, logging.FieldPlugins, len(cfg.Plugins))

	out, err := e.backend.Transform(ctx, code, cfg)
	if err != nil {
		var located locatedError
		if errors.As(err, &located) {
			located.Relocate(func(line int) int {
				// Directive blocks move lines in ways that cannot be traced back.
				if code != encoded {
					return 0
				}
				return blankline.OriginalLine(code, line)
			})
		}
		return "", fmt.Errorf("remove types from %s: %w", fileName, err)
	}
	if out == nil {
		return "", fmt.Errorf("remove types from %s: %w", fileName, ErrNoOutput)
	}

	return blankline.Decode(out.Code), nil
}
