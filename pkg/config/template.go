package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value.
	// If false, generates a minimal template with settings commented out.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON(opts.Full)
	}
	if opts.Full {
		return generateFullTemplate(), nil
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Formatter applied to every output: basic, prettier, or none
formatter: basic

# Path to the prettier executable (formatter: prettier)
# prettier_path: ./node_modules/.bin/prettier

# Remove @ts-ignore and @ts-expect-error comments
# remove_ts_comments: false

# Number of parallel workers (0 = auto)
# jobs: 0

# File patterns to skip (glob patterns)
# ignore:
#   - "**/*.test.ts"
`)

	return buf.Bytes()
}

// generateFullTemplate creates a template with every setting spelled out.
func generateFullTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`
#
# This template includes every setting with its default value.

# Formatter applied to every output: basic, prettier, or none
formatter: basic

# Path to the prettier executable (formatter: prettier); empty searches PATH
prettier_path: ""

# Prettier options applied on top of .prettierrc next to each input
formatter_options: {}
#   semi: false
#   singleQuote: true

# Remove @ts-ignore and @ts-expect-error comments
remove_ts_comments: false

# Number of parallel workers (0 = auto based on CPU cores)
jobs: 0

# File patterns to skip (glob patterns); node_modules is always skipped
ignore: []

# Transform typed fenced code blocks in Markdown files
markdown: false

# Walk symlinked directories
follow_symlinks: false

# Reuse outputs of unchanged inputs
cache:
  enabled: false
  dir: ""

# Colored output: auto, always, or never
color: auto
`)

	return buf.Bytes()
}

// templateToJSON renders the defaults as JSON. Comments have no JSON form, so
// the minimal template carries only the formatter.
func templateToJSON(full bool) ([]byte, error) {
	cfg := &Config{Formatter: FormatterBasic}
	if full {
		cfg = NewConfig()
		cfg.FormatterOptions = map[string]any{}
		cfg.Ignore = []string{}
	}

	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# detype configuration
# See: https://github.com/yaklabco/detype`
}
