package sfc

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Expression is a template expression and its location in the document.
type Expression struct {
	Start  int
	End    int
	Source string
}

var iteration = regexp.MustCompile(`\s+(of|in)\s+`)

// CollectExpressions returns the expressions of the template block in
// document order: directive values, interpolations and component tag names.
// An expression of the form "alias of/in source" contributes only its source.
//
// Interpolations are located on the raw content before tokenizing, since
// their contents may hold "<" (as in "Array<Item>") that a tokenizer would
// read as a tag. The tokenizer then sees the content with every
// interpolation blanked out.
func CollectExpressions(d *Descriptor) []Expression {
	if d == nil || d.Template == nil {
		return nil
	}

	content := d.Template.Content
	base := d.Template.Loc.Start

	spans := interpolations(content)
	out := make([]Expression, 0, len(spans))
	for _, span := range spans {
		inner := content[span.Start:span.End]
		trimmed := strings.TrimSpace(inner)
		if trimmed == "" {
			continue
		}
		start := base + span.Start + strings.Index(inner, trimmed)
		out = append(out, iterable(Expression{Start: start, End: start + len(trimmed), Source: trimmed}))
	}

	z := html.NewTokenizer(strings.NewReader(mask(content, spans)))
	offset := base
	for {
		tt := z.Next()
		raw := z.Raw()
		tokStart := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			slices.SortStableFunc(out, func(a, b Expression) int { return cmp.Compare(a.Start, b.Start) })
			return out

		case html.StartTagToken, html.SelfClosingTagToken:
			name := tagName(raw)
			if isComponent(name) {
				out = append(out, Expression{Start: tokStart + 1, End: tokStart + 1 + len(name), Source: name})
			}
			for _, attr := range parseAttrs(string(raw), tokStart) {
				if !isDirective(attr.Name) || !attr.HasValue || strings.TrimSpace(attr.Value) == "" {
					continue
				}
				out = append(out, iterable(Expression{
					Start:  attr.ValueLoc.Start,
					End:    attr.ValueLoc.End,
					Source: attr.Value,
				}))
			}
		}
	}
}

// interpolations returns the spans between "{{" and "}}" in template
// content, excluding the delimiters. Tags (with their quoted attribute
// values) and comments are skipped, so "{{" inside an attribute is not an
// interpolation. An unterminated "{{", tag or comment ends the scan.
func interpolations(content string) []Range {
	var spans []Range
	for i := 0; i < len(content); {
		switch {
		case strings.HasPrefix(content[i:], "<!--"):
			end := strings.Index(content[i+4:], "-->")
			if end < 0 {
				return spans
			}
			i += 4 + end + 3

		case content[i] == '<' && i+1 < len(content) && isTagStart(content[i+1]):
			end := tagEnd(content, i+1)
			if end < 0 {
				return spans
			}
			i = end + 1

		case strings.HasPrefix(content[i:], "{{"):
			end := strings.Index(content[i+2:], "}}")
			if end < 0 {
				return spans
			}
			spans = append(spans, Range{Start: i + 2, End: i + 2 + end})
			i += 2 + end + 2

		default:
			i++
		}
	}
	return spans
}

func isTagStart(c byte) bool {
	return c == '/' || c == '!' || c == '?' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// tagEnd returns the offset of the ">" closing the tag that starts before
// from, or -1.
func tagEnd(content string, from int) int {
	var quote byte
	for i := from; i < len(content); i++ {
		c := content[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

// mask replaces every span and its delimiters with spaces, keeping newlines
// and byte offsets.
func mask(content string, spans []Range) string {
	if len(spans) == 0 {
		return content
	}
	b := []byte(content)
	for _, span := range spans {
		for i := span.Start - 2; i < span.End+2; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// iterable narrows "alias in source" to its source part when the expression
// splits into exactly alias, keyword and source.
func iterable(e Expression) Expression {
	matches := iteration.FindAllStringIndex(e.Source, -1)
	if len(matches) != 1 {
		return e
	}
	cut := matches[0][1]
	return Expression{Start: e.Start + cut, End: e.End, Source: e.Source[cut:]}
}

func isDirective(name string) bool {
	return strings.HasPrefix(name, "v-") ||
		strings.HasPrefix(name, ":") ||
		strings.HasPrefix(name, "@") ||
		strings.HasPrefix(name, "#")
}

// isComponent reports whether a tag refers to a component rather than a
// native element: PascalCase or hyphenated names and <component>.
func isComponent(name string) bool {
	switch strings.ToLower(name) {
	case "template", "slot":
		return false
	case "component":
		return true
	}
	if strings.Contains(name, "-") {
		return true
	}
	for _, r := range name {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
