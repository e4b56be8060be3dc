// Package mdcode strips types from the fenced code blocks of Markdown
// documents, leaving the prose around them untouched.
package mdcode

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/splice"
)

// Block is a fenced code block whose info string names a typed language.
type Block struct {
	// Lang is the first word of the info string.
	Lang string
	Kind langdetect.Kind

	// LangStart is the offset of Lang in the document.
	LangStart int

	// Start and End delimit the code between the fences.
	Start int
	End   int
}

// TransformFunc converts the code of one block. fileID carries an extension
// matching the block's language.
type TransformFunc func(ctx context.Context, code, fileID string) (string, error)

// renamedLangs maps typed fence languages to their untyped names.
var renamedLangs = map[string]string{
	"ts":         "js",
	"typescript": "javascript",
	"tsx":        "jsx",
	"mts":        "mjs",
	"cts":        "cjs",
}

var kindExtensions = map[langdetect.Kind]string{
	langdetect.KindTypeScript: ".ts",
	langdetect.KindTSX:        ".tsx",
	langdetect.KindVue:        ".vue",
}

// Blocks returns the typed fenced code blocks of source in document order.
// Blocks nested in containers whose markers interrupt the code lines (block
// quotes, for example) are skipped, since their code is not one contiguous
// range of the document.
func Blocks(source []byte) []Block {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok || fenced.Info == nil {
			return ast.WalkContinue, nil
		}
		if b, ok := newBlock(fenced, source); ok {
			blocks = append(blocks, b)
		}
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

func newBlock(fenced *ast.FencedCodeBlock, source []byte) (Block, bool) {
	info := fenced.Info.Segment
	lang, _, _ := strings.Cut(strings.TrimSpace(string(info.Value(source))), " ")
	kind := langdetect.FenceKind(lang)
	if kind == langdetect.KindUnknown {
		return Block{}, false
	}

	lines := fenced.Lines()
	if lines.Len() == 0 {
		return Block{}, false
	}
	for i := range lines.Len() {
		seg := lines.At(i)
		if seg.Padding != 0 {
			return Block{}, false
		}
		if i > 0 && lines.At(i-1).Stop != seg.Start {
			return Block{}, false
		}
	}

	return Block{
		Lang:      lang,
		Kind:      kind,
		LangStart: info.Start + strings.Index(string(info.Value(source)), lang),
		Start:     lines.At(0).Start,
		End:       lines.At(lines.Len() - 1).Stop,
	}, true
}

// Transform runs fn over every typed fenced block of source and renames the
// block languages (ts to js, tsx to jsx). fileID names the document.
func Transform(ctx context.Context, source, fileID string, fn TransformFunc) (string, error) {
	blocks := Blocks([]byte(source))
	logging.FromContext(ctx).Debug("markdown code blocks", logging.FieldPath, fileID, logging.FieldRegions, len(blocks))

	edits := splice.NewBuilder(source)
	for i, b := range blocks {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("transform %s: %w", fileID, err)
		}

		id := fmt.Sprintf("%s#%d%s", fileID, i+1, kindExtensions[b.Kind])
		out, err := fn(ctx, source[b.Start:b.End], id)
		if err != nil {
			return "", fmt.Errorf("code block %d of %s: %w", i+1, fileID, err)
		}
		edits.Replace(b.Start, b.End, out)

		if js, ok := renamedLangs[strings.ToLower(b.Lang)]; ok {
			edits.Replace(b.LangStart, b.LangStart+len(b.Lang), js)
		}
	}

	result, err := edits.String()
	if err != nil {
		return "", fmt.Errorf("splice %s: %w", fileID, err)
	}
	return result, nil
}
