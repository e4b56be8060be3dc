// Package sfc parses single-file component documents into their top-level
// blocks and locates the expressions embedded in the template.
//
// Every offset is a byte offset into the original document, so callers can
// splice edits back into it without disturbing untouched regions.
package sfc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrDuplicateBlock reports a second template, script or script setup block.
	ErrDuplicateBlock = errors.New("duplicate block")

	// ErrUnclosedBlock reports a top-level block without its end tag.
	ErrUnclosedBlock = errors.New("unclosed block")
)

// BlockType identifies a top-level block.
type BlockType string

// Block types.
const (
	Template    BlockType = "template"
	Script      BlockType = "script"
	ScriptSetup BlockType = "scriptSetup"
	Style       BlockType = "style"
	Custom      BlockType = "custom"
)

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Attr is one attribute of an opening tag. Name keeps its original case.
type Attr struct {
	Name     string
	Value    string
	HasValue bool

	// Loc covers the whole attribute, ValueLoc the value without quotes.
	Loc      Range
	ValueLoc Range
}

// Block is one top-level region of a component file.
type Block struct {
	Type    BlockType
	Tag     string
	Content string
	Lang    string
	Attrs   []Attr

	// Loc covers the content, TagLoc the opening tag.
	Loc    Range
	TagLoc Range
}

// Attr returns the attribute called name.
func (b *Block) Attr(name string) (Attr, bool) {
	for _, a := range b.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Attr{}, false
}

// IsTyped reports whether the block is a TypeScript script.
func (b *Block) IsTyped() bool {
	return b != nil && (b.Lang == "ts" || b.Lang == "tsx")
}

// Descriptor is a parsed component file.
type Descriptor struct {
	Filename string
	Source   string

	Template     *Block
	Script       *Block
	ScriptSetup  *Block
	Styles       []*Block
	CustomBlocks []*Block
}

// Scripts returns the script blocks in document order.
func (d *Descriptor) Scripts() []*Block {
	var out []*Block
	for _, b := range []*Block{d.Script, d.ScriptSetup} {
		if b != nil {
			out = append(out, b)
		}
	}
	if len(out) == 2 && out[1].Loc.Start < out[0].Loc.Start {
		out[0], out[1] = out[1], out[0]
	}
	return out
}

// HasTypedScript reports whether any script block is TypeScript.
func (d *Descriptor) HasTypedScript() bool {
	return d.Script.IsTyped() || d.ScriptSetup.IsTyped()
}

// Parse splits source into its top-level blocks.
func Parse(source, filename string) (*Descriptor, error) {
	desc := &Descriptor{Filename: filename, Source: source}

	z := html.NewTokenizer(strings.NewReader(source))
	offset := 0
	for {
		tt := z.Next()
		raw := z.Raw()
		tokStart := offset
		offset += len(raw)

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return desc, nil
			}
			return nil, fmt.Errorf("parse %s: %w", filename, z.Err())

		case html.StartTagToken:
			name := tagName(raw)
			block := &Block{
				Tag:    name,
				Attrs:  parseAttrs(string(raw), tokStart),
				TagLoc: Range{Start: tokStart, End: offset},
			}
			end, err := skipToEnd(z, strings.ToLower(name), &offset)
			if err != nil {
				return nil, fmt.Errorf("parse %s: <%s> at offset %d: %w", filename, name, tokStart, err)
			}
			block.Loc = Range{Start: block.TagLoc.End, End: end}
			block.Content = source[block.Loc.Start:block.Loc.End]
			if lang, ok := block.Attr("lang"); ok {
				block.Lang = lang.Value
			}
			if err := desc.add(block); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filename, err)
			}

		case html.SelfClosingTagToken:
			name := tagName(raw)
			block := &Block{
				Tag:    name,
				Attrs:  parseAttrs(string(raw), tokStart),
				TagLoc: Range{Start: tokStart, End: offset},
				Loc:    Range{Start: offset, End: offset},
			}
			if err := desc.add(block); err != nil {
				return nil, fmt.Errorf("parse %s: %w", filename, err)
			}
		}
	}
}

// skipToEnd consumes tokens up to the end tag closing a top-level block and
// returns the offset where that end tag starts.
func skipToEnd(z *html.Tokenizer, name string, offset *int) (int, error) {
	depth := 1
	for {
		tt := z.Next()
		raw := z.Raw()
		tokStart := *offset
		*offset += len(raw)

		switch tt {
		case html.ErrorToken:
			return 0, ErrUnclosedBlock
		case html.StartTagToken:
			if strings.EqualFold(tagName(raw), name) {
				depth++
			}
		case html.EndTagToken:
			if strings.EqualFold(tagName(raw), name) {
				depth--
				if depth == 0 {
					return tokStart, nil
				}
			}
		}
	}
}

func (d *Descriptor) add(b *Block) error {
	switch strings.ToLower(b.Tag) {
	case "template":
		b.Type = Template
		if d.Template != nil {
			return fmt.Errorf("<template>: %w", ErrDuplicateBlock)
		}
		d.Template = b
	case "script":
		if _, setup := b.Attr("setup"); setup {
			b.Type = ScriptSetup
			if d.ScriptSetup != nil {
				return fmt.Errorf("<script setup>: %w", ErrDuplicateBlock)
			}
			d.ScriptSetup = b
			return nil
		}
		b.Type = Script
		if d.Script != nil {
			return fmt.Errorf("<script>: %w", ErrDuplicateBlock)
		}
		d.Script = b
	case "style":
		b.Type = Style
		d.Styles = append(d.Styles, b)
	default:
		b.Type = Custom
		d.CustomBlocks = append(d.CustomBlocks, b)
	}
	return nil
}

// tagName returns the element name of a raw start or end tag in its
// original case.
func tagName(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("<"))
	raw = bytes.TrimPrefix(raw, []byte("/"))
	end := bytes.IndexFunc(raw, func(r rune) bool {
		return r == '>' || r == '/' || isSpace(byte(r))
	})
	if end < 0 {
		return string(raw)
	}
	return string(raw[:end])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// parseAttrs scans the attributes of a raw opening tag that starts at base.
func parseAttrs(raw string, base int) []Attr {
	i := 1 + len(tagName([]byte(raw)))
	var attrs []Attr
	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] == '>' || strings.HasPrefix(raw[i:], "/>") {
			break
		}

		nameStart := i
		for i < len(raw) && !isSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && !strings.HasPrefix(raw[i:], "/>") {
			i++
		}
		if i == nameStart {
			i++
			continue
		}
		attr := Attr{Name: raw[nameStart:i]}

		j := i
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isSpace(raw[j]) {
				j++
			}
			attr.HasValue = true
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				quote := raw[j]
				valueEnd := strings.IndexByte(raw[j+1:], quote)
				if valueEnd < 0 {
					valueEnd = len(raw) - j - 1
				}
				attr.ValueLoc = Range{Start: base + j + 1, End: base + j + 1 + valueEnd}
				attr.Value = raw[j+1 : j+1+valueEnd]
				i = min(j+valueEnd+2, len(raw))
			default:
				valueStart := j
				for j < len(raw) && !isSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				attr.ValueLoc = Range{Start: base + valueStart, End: base + j}
				attr.Value = raw[valueStart:j]
				i = j
			}
		}
		attr.Loc = Range{Start: base + nameStart, End: base + i}
		attrs = append(attrs, attr)
	}
	return attrs
}
