package typestrip

import (
	"regexp"

	"github.com/yaklabco/detype/pkg/blankline"
)

// TypeOnlyKinds are the declaration kinds whose leading comments follow the
// retention rule.
var TypeOnlyKinds = []string{
	"type_alias_declaration",
	"interface_declaration",
	"ambient_declaration",
	"function_signature",
	"method_signature",
	"abstract_method_signature",
	"import_statement",
}

var (
	blankLineAfter = regexp.MustCompile(`^\s*\n\s*\n`)
	importType     = regexp.MustCompile(`^import\s+type\s+(?:\{|\*|[\w$]+\s*(?:,|\s+from\b))`)
)

// CommentRemover returns the plugin that schedules the leading comments of a
// deleted type-only declaration for removal.
//
// Comments are walked from the declaration upward. The first comment that is
// followed by a blank line, or that is itself a blank-line marker, stops the
// walk: it and everything above it stay. Comments below it are relabeled with
// RemoveMeLabel. code must be the exact text handed to the backend.
func CommentRemover(code string) Plugin {
	visit := func(p *Path) {
		if p.Node.Kind() == "import_statement" && !IsTypeOnlyImport(p.Node) {
			return
		}
		for i := len(p.LeadingComments) - 1; i >= 0; i-- {
			comment := p.LeadingComments[i]
			if blankLineAfter.MatchString(code[comment.End:]) || blankline.IsMarker(comment.Value) {
				break
			}
			comment.Value = RemoveMeLabel
		}
	}

	visitor := make(map[string]VisitFunc, len(TypeOnlyKinds))
	for _, kind := range TypeOnlyKinds {
		visitor[kind] = visit
	}
	return Plugin{Name: "detype-comment-remover", Visitor: visitor}
}

// IsTypeOnlyImport reports whether an import statement is `import type ...`.
func IsTypeOnlyImport(n Node) bool {
	return importType.MatchString(n.Text())
}
