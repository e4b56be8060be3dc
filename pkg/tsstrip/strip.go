package tsstrip

import (
	"fmt"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/detype/pkg/splice"
	"github.com/yaklabco/detype/pkg/typestrip"
)

type span struct {
	start, end int
}

// stripper accumulates the edits for one parsed document.
type stripper struct {
	src  []byte
	text string
	cfg  *typestrip.Config

	deletions    []span
	replacements []splice.Edit

	comments  []*typestrip.Comment
	commentAt map[int]*typestrip.Comment

	// refs counts identifiers used in value positions.
	refs map[string]int
	// typeBindings holds names declared or imported for types only.
	typeBindings map[string]bool

	imports []*sitter.Node
	exports []*sitter.Node
}

func newStripper(src []byte, cfg *typestrip.Config) *stripper {
	return &stripper{
		src:          src,
		text:         string(src),
		cfg:          cfg,
		commentAt:    make(map[int]*typestrip.Comment),
		refs:         make(map[string]int),
		typeBindings: make(map[string]bool),
	}
}

func (s *stripper) content(n *sitter.Node) string {
	return s.text[start(n):end(n)]
}

// strip walks n and records the deletions that remove its type-only syntax.
//
//nolint:gocyclo,cyclop // One case per grammar kind reads better than a dispatch table.
func (s *stripper) strip(n *sitter.Node) error {
	if s.isDeleted(start(n), end(n)) {
		return nil
	}

	switch n.Type() {
	case "comment":
		return nil

	case "type_annotation", "type_predicate_annotation", "asserts_annotation",
		"omitting_type_annotation", "opting_type_annotation", "adding_type_annotation",
		"type_parameters", "type_arguments":
		s.delete(start(n), end(n))
		return nil

	case "type_alias_declaration", "interface_declaration":
		if name := field(n, "name"); name != nil {
			s.typeBindings[s.content(name)] = true
		}
		s.deleteStatement(n)
		return nil

	case "ambient_declaration", "function_signature":
		s.deleteStatement(n)
		return nil

	case "method_signature", "abstract_method_signature", "index_signature":
		s.deleteLines(start(n), s.extendSemicolon(end(n)))
		return nil

	case "import_statement":
		if typestrip.IsTypeOnlyImport(wrap(n, s.src)) {
			for _, local := range s.importLocals(n) {
				s.typeBindings[local] = true
			}
			s.deleteStatement(n)
		} else {
			s.imports = append(s.imports, n)
		}
		return nil

	case "export_statement":
		return s.stripExport(n)

	case "as_expression", "satisfies_expression":
		expr := n.NamedChild(0)
		s.delete(end(expr), end(n))
		return s.strip(expr)

	case "non_null_expression":
		s.delete(end(n)-1, end(n))
		return s.strip(n.NamedChild(0))

	case "enum_declaration":
		return s.lowerEnum(n)

	case "internal_module", "module":
		return s.stripNamespace(n)

	case "public_field_definition":
		if childOfKind(n, "declare") != nil || childOfKind(n, "abstract") != nil {
			s.deleteLines(start(n), s.extendSemicolon(end(n)))
			return nil
		}
		s.deleteModifiers(n)

	case "method_definition":
		s.deleteModifiers(n)
		if name := field(n, "name"); name != nil && s.content(name) == "constructor" {
			s.lowerParameterProperties(n)
		}

	case "required_parameter", "optional_parameter":
		if pattern := field(n, "pattern"); pattern != nil && pattern.Type() == "this" {
			s.deleteListItem(n)
			return nil
		}
		s.deleteModifiers(n)

	case "abstract_class_declaration":
		if kw := childOfKind(n, "abstract"); kw != nil {
			s.deleteToken(kw)
		}

	case "implements_clause":
		s.delete(s.skipSpaceBack(start(n)), end(n))
		return nil

	case "variable_declarator":
		if bang := childOfKind(n, "!"); bang != nil {
			s.delete(start(bang), end(bang))
		}

	case "identifier", "shorthand_property_identifier":
		s.refs[s.content(n)]++
		return nil
	}

	for _, c := range children(n) {
		if err := s.strip(c); err != nil {
			return err
		}
	}
	return nil
}

// stripExport handles export statements: type-only exports are deleted,
// local export clauses are deferred to elideExports.
func (s *stripper) stripExport(n *sitter.Node) error {
	if childOfKind(n, "type") != nil {
		s.deleteStatement(n)
		return nil
	}

	if decl := field(n, "declaration"); decl != nil {
		switch decl.Type() {
		case "type_alias_declaration", "interface_declaration", "ambient_declaration", "function_signature":
			return s.strip(decl)
		}
	}

	if clause := childOfKind(n, "export_clause"); clause != nil {
		s.exports = append(s.exports, n)
		return nil
	}

	for _, c := range children(n) {
		if err := s.strip(c); err != nil {
			return err
		}
	}
	return nil
}

// stripNamespace deletes namespaces that only declare types.
func (s *stripper) stripNamespace(n *sitter.Node) error {
	body := field(n, "body")
	if body != nil {
		for _, stmt := range namedChildren(body) {
			if !isTypeOnlyStatement(stmt) {
				point := n.StartPoint()
				return fmt.Errorf("%d:%d: namespace with runtime members: %w",
					point.Row+1, point.Column+1, ErrUnsupported)
			}
		}
	}
	s.deleteStatement(n)
	return nil
}

func isTypeOnlyStatement(n *sitter.Node) bool {
	switch n.Type() {
	case "comment", "type_alias_declaration", "interface_declaration", "ambient_declaration", "function_signature":
		return true
	case "export_statement":
		if childOfKind(n, "type") != nil {
			return true
		}
		decl := field(n, "declaration")
		return decl != nil && isTypeOnlyStatement(decl)
	case "expression_statement":
		inner := namedChildren(n)
		return len(inner) == 1 && (inner[0].Type() == "internal_module" || inner[0].Type() == "module") &&
			func() bool {
				body := field(inner[0], "body")
				if body == nil {
					return true
				}
				return !slices.ContainsFunc(namedChildren(body), func(c *sitter.Node) bool { return !isTypeOnlyStatement(c) })
			}()
	}
	return false
}

// modifierTokens are class member and parameter keywords with no runtime
// meaning.
var modifierTokens = map[string]bool{
	"accessibility_modifier": true,
	"override_modifier":      true,
	"readonly":               true,
	"declare":                true,
	"abstract":               true,
}

// deleteModifiers removes TypeScript-only modifiers and the optional or
// definite markers of a member or parameter.
func (s *stripper) deleteModifiers(n *sitter.Node) {
	for _, c := range children(n) {
		switch {
		case modifierTokens[c.Type()]:
			s.deleteToken(c)
		case c.Type() == "?" || c.Type() == "!":
			s.delete(start(c), end(c))
		}
	}
}

// runPlugins visits every named node in pre-order with the configured plugins.
func (s *stripper) runPlugins(n *sitter.Node) {
	if len(s.cfg.Plugins) == 0 {
		return
	}
	if n.IsNamed() {
		for _, plugin := range s.cfg.Plugins {
			if visit, ok := plugin.Visitor[n.Type()]; ok {
				visit(typestrip.NewPath(wrap(n, s.src), s.leadingComments(n), s.text, s.replace))
			}
		}
	}
	for _, c := range children(n) {
		s.runPlugins(c)
	}
}

// replace substitutes target with replacement by deleting the text of target
// around replacement.
func (s *stripper) replace(target, replacement typestrip.Node) {
	if replacement.StartByte() < target.StartByte() || replacement.EndByte() > target.EndByte() {
		return
	}
	s.delete(target.StartByte(), replacement.StartByte())
	s.delete(replacement.EndByte(), target.EndByte())
}

// collectComments records every comment node with its delimiter-free value.
func (s *stripper) collectComments(n *sitter.Node) {
	if n.Type() == "comment" {
		text := s.content(n)
		value := strings.TrimPrefix(text, "//")
		if strings.HasPrefix(text, "/*") {
			value = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
		}
		c := &typestrip.Comment{Start: start(n), End: end(n), Value: value}
		s.comments = append(s.comments, c)
		s.commentAt[c.Start] = c
		return
	}
	for _, c := range children(n) {
		s.collectComments(c)
	}
}

// leadingComments returns the comments directly above n, or above the export
// statement wrapping it. A comment that shares a line with the code before it
// belongs to that code and ends the run.
func (s *stripper) leadingComments(n *sitter.Node) []*typestrip.Comment {
	target := n
	if parent := n.Parent(); parent != nil && parent.Type() == "export_statement" {
		target = parent
	}

	var comments []*typestrip.Comment
	for prev := target.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if before := prev.PrevSibling(); before != nil && before.Type() != "comment" &&
			before.EndPoint().Row == prev.StartPoint().Row {
			break
		}
		if c, ok := s.commentAt[start(prev)]; ok {
			comments = append(comments, c)
		}
	}
	slices.Reverse(comments)
	return comments
}

// filterComments deletes surviving comments rejected by ShouldPrintComment.
func (s *stripper) filterComments() {
	if s.cfg.ShouldPrintComment == nil {
		return
	}
	for _, c := range s.comments {
		if s.isDeleted(c.Start, c.End) || s.isReplaced(c.Start, c.End) {
			continue
		}
		if !s.cfg.ShouldPrintComment(c.Value) {
			s.deleteLines(c.Start, c.End)
		}
	}
}

// isReplaced reports whether [from, to) lies inside a generated replacement.
func (s *stripper) isReplaced(from, to int) bool {
	for _, r := range s.replacements {
		if r.Start <= from && to <= r.End && r.Len() > 0 {
			return true
		}
	}
	return false
}

// countRefs records value references under n without scheduling edits.
func (s *stripper) countRefs(n *sitter.Node) {
	switch n.Type() {
	case "identifier", "shorthand_property_identifier":
		s.refs[s.content(n)]++
		return
	case "type_arguments", "type_annotation":
		return
	}
	for _, c := range children(n) {
		s.countRefs(c)
	}
}
