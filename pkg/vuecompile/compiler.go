// Package vuecompile compiles the script setup block of a component whose
// props or emits are declared through type arguments, and extracts the
// runtime declarations from the compiled output.
package vuecompile

import (
	"context"
	"errors"
	"io/fs"
	"regexp"
	"strings"

	"github.com/yaklabco/detype/pkg/sfc"
)

// ErrCompile reports a script setup block that could not be compiled.
var ErrCompile = errors.New("compile script setup")

// Options configure one compilation.
type Options struct {
	// FS resolves relative type imports. Nil limits resolution to types
	// declared in the component itself.
	FS fs.FS

	// Dir is the component's directory inside FS.
	Dir string
}

// Result is compiled component code.
type Result struct {
	Content string
}

// Compiler compiles the scripts of a component descriptor.
type Compiler interface {
	Compile(ctx context.Context, d *sfc.Descriptor, opts Options) (*Result, error)
}

var (
	typedMacro  = regexp.MustCompile(`defineProps\s*<|defineEmits\s*<`)
	propsObject = regexp.MustCompile(`\sprops:\s*\{`)
	emitsArray  = regexp.MustCompile(`\semits:\s(\[.*\]?)`)
)

// NeedsCompile reports whether script setup content declares props or emits
// with type arguments.
func NeedsCompile(content string) bool {
	return typedMacro.MatchString(content)
}

// ExtractProps returns the props object literal of compiled code, braces
// included. Continuation lines lose the indentation of the props key, so the
// closing brace lines up with the start of the statement it is spliced into.
func ExtractProps(compiled string) (string, bool) {
	loc := propsObject.FindStringIndex(compiled)
	if loc == nil {
		return "", false
	}
	open := loc[1] - 1
	end := matchBrace(compiled, open)
	if end < 0 {
		return "", false
	}
	object := compiled[open : end+1]

	lineStart := strings.LastIndexByte(compiled[:open], '\n') + 1
	line := compiled[lineStart:open]
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	if indent != "" {
		object = strings.ReplaceAll(object, "\n"+indent, "\n")
	}
	return object, true
}

// ExtractEmits returns the emits array literal of compiled code.
func ExtractEmits(compiled string) (string, bool) {
	m := emitsArray.FindStringSubmatch(compiled)
	if m == nil {
		return "", false
	}
	return strings.TrimRight(m[1], ", \t"), true
}

// matchBrace returns the index of the brace closing the one at open, skipping
// string literals, or -1.
func matchBrace(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
