// Package tsstrip is a tree-sitter backend for typestrip.
//
// It parses TypeScript or TSX, runs the configured plugins, and deletes
// type-only syntax by byte-range edits over the original text. Everything the
// edits do not touch, comments and formatting included, is printed verbatim,
// and deleted ranges keep their newlines so line numbers stay 1:1.
package tsstrip

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/yaklabco/detype/pkg/typestrip"
)

var (
	// ErrSyntax reports input the grammar could not parse.
	ErrSyntax = errors.New("syntax error")

	// ErrUnsupported reports TypeScript constructs with runtime semantics
	// this backend does not lower.
	ErrUnsupported = errors.New("unsupported syntax")
)

// Backend implements typestrip.Backend with tree-sitter.
type Backend struct{}

// New creates a tree-sitter backend.
func New() *Backend {
	return &Backend{}
}

// Language returns the grammar for a file name: TSX for .tsx, TypeScript
// otherwise.
func Language(filename string) *sitter.Language {
	if strings.EqualFold(filepath.Ext(filename), ".tsx") {
		return tsx.GetLanguage()
	}
	return typescript.GetLanguage()
}

// Parse parses source with the grammar selected by filename. The caller
// closes the returned tree.
func Parse(ctx context.Context, source []byte, filename string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(Language(filename))

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	if root := tree.RootNode(); root.HasError() {
		defer tree.Close()
		return nil, syntaxError(root, filename)
	}
	return tree, nil
}

// SyntaxError locates a parse failure. It matches ErrSyntax.
type SyntaxError struct {
	Filename string

	// Line and Column are 1-based; zero when the failure has no position.
	Line, Column int

	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Filename, ErrSyntax)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Filename, e.Line, e.Column, e.Reason, ErrSyntax)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Relocate maps Line through lineOf. A result below 1 drops the position.
func (e *SyntaxError) Relocate(lineOf func(int) int) {
	if e.Line == 0 {
		return
	}
	e.Line = lineOf(e.Line)
	if e.Line < 1 {
		e.Line, e.Column = 0, 0
	}
}

// syntaxError describes the first error or missing node under root.
func syntaxError(root *sitter.Node, filename string) error {
	bad := firstError(root)
	if bad == nil {
		return &SyntaxError{Filename: filename}
	}
	point := bad.StartPoint()
	what := "unexpected input"
	if bad.IsMissing() {
		what = "missing " + bad.Type()
	}
	return &SyntaxError{
		Filename: filename,
		Line:     offset(point.Row) + 1,
		Column:   offset(point.Column) + 1,
		Reason:   what,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for _, c := range children(n) {
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}

// Transform implements typestrip.Backend.
func (b *Backend) Transform(ctx context.Context, source string, cfg *typestrip.Config) (*typestrip.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("transform cancelled: %w", err)
	}

	src := []byte(source)
	tree, err := Parse(ctx, src, cfg.Filename)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	s := newStripper(src, cfg)
	root := tree.RootNode()

	s.collectComments(root)
	s.runPlugins(root)
	if err := s.strip(root); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Filename, err)
	}
	s.elideExports()
	s.elideImports()
	s.filterComments()

	code, err := s.print()
	if err != nil {
		return nil, fmt.Errorf("print %s: %w", cfg.Filename, err)
	}
	return &typestrip.Output{Code: code}, nil
}
