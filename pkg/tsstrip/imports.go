package tsstrip

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// binding is one local name introduced by an import clause.
type binding struct {
	local      string
	node       *sitter.Node
	inlineType bool
}

func (s *stripper) importBindings(clause *sitter.Node) []binding {
	var out []binding
	for _, c := range namedChildren(clause) {
		switch c.Type() {
		case "identifier":
			out = append(out, binding{local: s.content(c), node: c})
		case "namespace_import":
			if id := childOfKind(c, "identifier"); id != nil {
				out = append(out, binding{local: s.content(id), node: c})
			}
		case "named_imports":
			for _, spec := range namedChildren(c) {
				if spec.Type() != "import_specifier" {
					continue
				}
				local := field(spec, "alias")
				if local == nil {
					local = field(spec, "name")
				}
				if local == nil {
					continue
				}
				out = append(out, binding{
					local:      s.content(local),
					node:       spec,
					inlineType: childOfKind(spec, "type") != nil,
				})
			}
		}
	}
	return out
}

// importLocals lists the local names bound by an import statement.
func (s *stripper) importLocals(stmt *sitter.Node) []string {
	clause := childOfKind(stmt, "import_clause")
	if clause == nil {
		return nil
	}
	var names []string
	for _, b := range s.importBindings(clause) {
		names = append(names, b.local)
	}
	return names
}

// elideImports drops import bindings that are inline type imports or never
// referenced as values, and whole statements left without bindings.
// Side-effect imports are kept.
func (s *stripper) elideImports() {
	for _, stmt := range s.imports {
		clause := childOfKind(stmt, "import_clause")
		if clause == nil {
			continue
		}
		bindings := s.importBindings(clause)

		var drop []binding
		for _, b := range bindings {
			if b.inlineType || s.refs[b.local] == 0 {
				drop = append(drop, b)
			}
		}
		if len(drop) == 0 {
			continue
		}
		if len(drop) == len(bindings) {
			s.deleteStatement(stmt)
			continue
		}

		named := childOfKind(clause, "named_imports")
		namedTotal, namedDropped := 0, 0
		for _, b := range bindings {
			if b.node.Type() == "import_specifier" {
				namedTotal++
			}
		}
		for _, b := range drop {
			if b.node.Type() == "import_specifier" {
				namedDropped++
			}
		}

		for _, b := range drop {
			if b.node.Type() == "import_specifier" && namedDropped == namedTotal {
				continue
			}
			s.deleteListItem(b.node)
		}
		if named != nil && namedTotal > 0 && namedDropped == namedTotal {
			s.deleteListItem(named)
		}
	}
}

// elideExports drops export specifiers naming type-only bindings. Surviving
// local specifiers count as value references for import elision.
func (s *stripper) elideExports() {
	for _, stmt := range s.exports {
		clause := childOfKind(stmt, "export_clause")
		reexport := field(stmt, "source") != nil

		var specs, drop []*sitter.Node
		for _, spec := range namedChildren(clause) {
			if spec.Type() != "export_specifier" {
				continue
			}
			specs = append(specs, spec)

			name := field(spec, "name")
			if name == nil {
				continue
			}
			local := s.content(name)
			if childOfKind(spec, "type") != nil || (!reexport && s.typeBindings[local]) {
				drop = append(drop, spec)
				continue
			}
			if !reexport {
				s.refs[local]++
			}
		}

		switch {
		case len(drop) == 0:
		case len(drop) == len(specs):
			s.deleteStatement(stmt)
		default:
			for _, spec := range drop {
				s.deleteListItem(spec)
			}
		}
	}
}
