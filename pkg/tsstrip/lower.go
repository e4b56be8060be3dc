package tsstrip

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/detype/pkg/splice"
)

// lowerEnum replaces an enum declaration with the equivalent IIFE. Members
// keep their source rows so the output stays line-aligned.
func (s *stripper) lowerEnum(n *sitter.Node) error {
	name, body := field(n, "name"), field(n, "body")
	if name == nil || body == nil {
		point := n.StartPoint()
		return fmt.Errorf("%d:%d: enum without a name or body: %w", point.Row+1, point.Column+1, ErrUnsupported)
	}
	id := s.content(name)

	var b strings.Builder
	fmt.Fprintf(&b, "var %s = /*#__PURE__*/function (%s) {", id, id)

	row := n.StartPoint().Row
	next, numeric := int64(0), true
	prevKey := ""
	for _, member := range namedChildren(body) {
		var keyNode, valueNode *sitter.Node
		switch member.Type() {
		case "comment":
			continue
		case "enum_assignment":
			keyNode, valueNode = field(member, "name"), field(member, "value")
		default:
			keyNode = member
		}
		if keyNode == nil {
			continue
		}
		if valueNode != nil {
			s.countRefs(valueNode)
		}
		key := s.enumKey(keyNode)

		for ; row < member.StartPoint().Row; row++ {
			b.WriteByte('\n')
		}
		b.WriteByte(' ')

		switch {
		case valueNode == nil && numeric:
			fmt.Fprintf(&b, "%s[%s[%s] = %d] = %s;", id, id, key, next, key)
			next++
		case valueNode == nil:
			fmt.Fprintf(&b, "%s[%s[%s] = %s[%s] + 1] = %s;", id, id, key, id, prevKey, key)
		case valueNode.Type() == "string" || valueNode.Type() == "template_string":
			fmt.Fprintf(&b, "%s[%s] = %s;", id, key, s.content(valueNode))
			numeric = false
		default:
			value := s.content(valueNode)
			if v, err := strconv.ParseInt(strings.ReplaceAll(value, "_", ""), 0, 64); err == nil {
				fmt.Fprintf(&b, "%s[%s[%s] = %d] = %s;", id, id, key, v, key)
				next, numeric = v+1, true
				break
			}
			fmt.Fprintf(&b, "%s[%s[%s] = %s] = %s;", id, id, key, value, key)
			numeric = false
		}
		prevKey = key
	}

	for ; row < n.EndPoint().Row; row++ {
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, " return %s; }(%s || {});", id, id)

	s.replacements = append(s.replacements, splice.Edit{Start: start(n), End: end(n), Text: b.String()})
	return nil
}

// enumKey renders a member name as a string literal.
func (s *stripper) enumKey(n *sitter.Node) string {
	text := s.content(n)
	if n.Type() == "string" {
		return text
	}
	return strconv.Quote(text)
}

// lowerParameterProperties assigns constructor parameter properties at the
// top of the constructor body, after a leading super() call.
func (s *stripper) lowerParameterProperties(method *sitter.Node) {
	params, body := field(method, "parameters"), field(method, "body")
	if params == nil || body == nil {
		return
	}

	var assigns strings.Builder
	for _, p := range namedChildren(params) {
		if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
			continue
		}
		if !isParameterProperty(p) {
			continue
		}
		pattern := field(p, "pattern")
		if pattern == nil || pattern.Type() != "identifier" {
			continue
		}
		name := s.content(pattern)
		fmt.Fprintf(&assigns, " this.%s = %s;", name, name)
	}
	if assigns.Len() == 0 {
		return
	}

	at := start(body) + 1
	if stmts := namedChildren(body); len(stmts) > 0 && isSuperCall(stmts[0]) {
		at = s.extendSemicolon(end(stmts[0]))
	}
	s.replacements = append(s.replacements, splice.Edit{Start: at, End: at, Text: assigns.String()})
}

func isParameterProperty(p *sitter.Node) bool {
	return childOfKind(p, "accessibility_modifier") != nil ||
		childOfKind(p, "override_modifier") != nil ||
		childOfKind(p, "readonly") != nil
}

func isSuperCall(stmt *sitter.Node) bool {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return false
	}
	call := stmt.NamedChild(0)
	if call.Type() != "call_expression" {
		return false
	}
	fn := field(call, "function")
	return fn != nil && fn.Type() == "super"
}
