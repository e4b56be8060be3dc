package format

import (
	"context"
	"fmt"
	"strings"
)

// Basic is an in-process whitespace normalizer. It removes trailing
// whitespace and leading and trailing blank lines, and ends the text with
// exactly one newline. Blank-line runs between code are kept at their length.
// Template literal contents are left untouched.
type Basic struct{}

// Format implements Formatter.
func (Basic) Format(ctx context.Context, text, _ string, _ Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	protected := templateNewlines(text)
	lines := strings.Split(text, "\n")

	var b strings.Builder
	b.Grow(len(text))

	offset := 0
	blanks := 0
	started := false
	for i, line := range lines {
		nl := offset + len(line)
		offset = nl + 1

		// Text continuing a template literal from the previous line is kept
		// verbatim, as is whitespace before a newline inside one.
		inside := i > 0 && protected[nl-len(line)-1]
		if !protected[nl] {
			line = strings.TrimRight(line, " \t\r")
		}

		if line == "" && !inside && !protected[nl] {
			if started {
				blanks++
			}
			continue
		}

		b.WriteString(strings.Repeat("\n", blanks))
		blanks = 0
		b.WriteString(line)
		b.WriteByte('\n')
		started = true
	}
	return b.String(), nil
}

// templateNewlines returns the offsets of newlines that lie inside template
// literals.
//
//nolint:gocyclo,cyclop // Small lexer state machine.
func templateNewlines(text string) map[int]bool {
	protected := make(map[int]bool)

	// stack holds '`' for an open template literal and '$' or '{' for
	// braces opened inside a substitution.
	var stack []byte
	inTemplate := func() bool { return len(stack) > 0 && stack[len(stack)-1] == '`' }

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inTemplate() {
			switch {
			case c == '\\':
				i++
			case c == '`':
				stack = stack[:len(stack)-1]
			case c == '$' && i+1 < len(text) && text[i+1] == '{':
				stack = append(stack, '$')
				i++
			case c == '\n':
				protected[i] = true
			}
			continue
		}

		switch c {
		case '/':
			if i+1 < len(text) && text[i+1] == '/' {
				for i+1 < len(text) && text[i+1] != '\n' {
					i++
				}
			} else if i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					return protected
				}
				i += end + 3
			}
		case '\'', '"':
			for i+1 < len(text) && text[i+1] != '\n' {
				i++
				if text[i] == '\\' {
					i++
					continue
				}
				if text[i] == c {
					break
				}
			}
		case '`':
			stack = append(stack, '`')
		case '{':
			if len(stack) > 0 {
				stack = append(stack, '{')
			}
		case '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return protected
}
