package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"unicode"
)

// Prettier formats by running the prettier executable with the text on
// stdin.
type Prettier struct {
	// Path is the executable; empty means "prettier" on PATH.
	Path string
}

// Format implements Formatter.
func (p *Prettier) Format(ctx context.Context, text, filename string, opts Options) (string, error) {
	bin := p.Path
	if bin == "" {
		bin = "prettier"
	}

	args := append([]string{"--stdin-filepath", filename}, Flags(opts)...)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%w: %s %s: %w", ErrFormatter, bin, filename, err)
		}
		return "", fmt.Errorf("%w: %s %s: %w: %s", ErrFormatter, bin, filename, err, msg)
	}
	if stdout.Len() == 0 && text != "" {
		return "", fmt.Errorf("%w: %s %s: empty output", ErrFormatter, bin, filename)
	}
	return stdout.String(), nil
}

// skippedOptions are configuration keys with no command-line form.
var skippedOptions = map[string]bool{
	"overrides": true,
	"$schema":   true,
	"filepath":  true,
}

// Flags renders options as prettier command-line flags in key order.
func Flags(opts Options) []string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		if !skippedOptions[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var flags []string
	for _, k := range keys {
		name := kebab(k)
		switch v := opts[k].(type) {
		case bool:
			if v {
				flags = append(flags, "--"+name)
			} else {
				flags = append(flags, "--no-"+name)
			}
		case []any:
			for _, item := range v {
				flags = append(flags, fmt.Sprintf("--%s=%v", strings.TrimSuffix(name, "s"), item))
			}
		case []string:
			for _, item := range v {
				flags = append(flags, fmt.Sprintf("--%s=%s", strings.TrimSuffix(name, "s"), item))
			}
		case nil, map[string]any:
		default:
			flags = append(flags, fmt.Sprintf("--%s=%v", name, v))
		}
	}
	return flags
}

// kebab converts a camelCase option name to its flag spelling.
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
