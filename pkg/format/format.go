// Package format runs the final code formatter over transformed output.
//
// Formatters receive the file name so they can infer the parser, and a set
// of options named after Prettier's configuration keys.
package format

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrFormatter reports a formatter that failed or produced no output.
	ErrFormatter = errors.New("formatter failed")

	// ErrUnknownFormatter reports a formatter name with no implementation.
	ErrUnknownFormatter = errors.New("unknown formatter")
)

// Formatter names.
const (
	NameBasic    = "basic"
	NamePrettier = "prettier"
	NameNone     = "none"
)

// Options are formatter options keyed by Prettier option name.
type Options map[string]any

// Formatter formats source text.
type Formatter interface {
	Format(ctx context.Context, text, filename string, opts Options) (string, error)
}

// Names lists the available formatter names.
func Names() []string {
	return []string{NameBasic, NamePrettier, NameNone}
}

// New returns the formatter called name. prettierPath is the executable the
// prettier formatter runs; empty means "prettier" on PATH.
func New(name, prettierPath string) (Formatter, error) {
	switch name {
	case NameBasic, "":
		return Basic{}, nil
	case NamePrettier:
		return &Prettier{Path: prettierPath}, nil
	case NameNone:
		return None{}, nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormatter, name, Names())
}

// IsKnown reports whether name selects a formatter.
func IsKnown(name string) bool {
	return slices.Contains(Names(), name)
}

// None returns text unchanged.
type None struct{}

// Format implements Formatter.
func (None) Format(_ context.Context, text, _ string, _ Options) (string, error) {
	return text, nil
}
