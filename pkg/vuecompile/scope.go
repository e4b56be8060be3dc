package vuecompile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/detype/pkg/tsstrip"
)

// maxDepth bounds type reference chains, including cyclic ones.
const maxDepth = 32

// scope is one parsed file: its type declarations and imported names.
type scope struct {
	src     []byte
	root    *sitter.Node
	dir     string
	decls   map[string]*sitter.Node
	imports map[string]importRef
}

type importRef struct {
	from string
	name string
}

// typeRef is a type node together with the scope it was declared in.
type typeRef struct {
	node  *sitter.Node
	scope *scope
}

func (sc *scope) text(n *sitter.Node) string {
	return n.Content(sc.src)
}

// resolver parses and indexes the files reachable through relative type
// imports.
type resolver struct {
	ctx   context.Context
	fsys  fs.FS
	files map[string]*scope
	trees []*sitter.Tree
}

func newResolver(ctx context.Context, opts Options) *resolver {
	return &resolver{ctx: ctx, fsys: opts.FS, files: make(map[string]*scope)}
}

func (r *resolver) close() {
	for _, t := range r.trees {
		t.Close()
	}
}

// parse indexes source as a file in dir.
func (r *resolver) parse(source, filename, dir string) (*scope, error) {
	src := []byte(source)
	tree, err := tsstrip.Parse(r.ctx, src, filename)
	if err != nil {
		return nil, err
	}
	r.trees = append(r.trees, tree)

	sc := &scope{
		src:     src,
		root:    tree.RootNode(),
		dir:     dir,
		decls:   make(map[string]*sitter.Node),
		imports: make(map[string]importRef),
	}
	sc.index(sc.root)
	return sc, nil
}

// merge adds the declarations and imports of other to sc.
func (sc *scope) merge(other *scope) {
	for name, n := range other.decls {
		if _, ok := sc.decls[name]; !ok {
			sc.decls[name] = n
		}
	}
	for name, ref := range other.imports {
		if _, ok := sc.imports[name]; !ok {
			sc.imports[name] = ref
		}
	}
}

func (sc *scope) index(root *sitter.Node) {
	for _, stmt := range namedChildren(root) {
		switch stmt.Type() {
		case "export_statement":
			if decl := field(stmt, "declaration"); decl != nil {
				sc.declare(decl)
			}
		case "import_statement":
			sc.indexImport(stmt)
		default:
			sc.declare(stmt)
		}
	}
}

func (sc *scope) declare(n *sitter.Node) {
	switch n.Type() {
	case "interface_declaration", "type_alias_declaration", "enum_declaration":
		if name := field(n, "name"); name != nil {
			sc.decls[sc.text(name)] = n
		}
	}
}

func (sc *scope) indexImport(stmt *sitter.Node) {
	source := field(stmt, "source")
	clause := childOfKind(stmt, "import_clause")
	if source == nil || clause == nil {
		return
	}
	from := unquote(sc.text(source))

	named := childOfKind(clause, "named_imports")
	if named == nil {
		return
	}
	for _, spec := range namedChildren(named) {
		if spec.Type() != "import_specifier" {
			continue
		}
		name := field(spec, "name")
		if name == nil {
			continue
		}
		local := name
		if alias := field(spec, "alias"); alias != nil {
			local = alias
		}
		sc.imports[sc.text(local)] = importRef{from: from, name: sc.text(name)}
	}
}

// lookup resolves a type name declared in sc or imported into it from a
// relative module.
func (r *resolver) lookup(name string, sc *scope, depth int) (typeRef, bool, error) {
	if depth > maxDepth {
		return typeRef{}, false, fmt.Errorf("type %s: reference chain too deep: %w", name, ErrCompile)
	}
	if n, ok := sc.decls[name]; ok {
		return typeRef{node: n, scope: sc}, true, nil
	}

	ref, ok := sc.imports[name]
	if !ok || !strings.HasPrefix(ref.from, ".") || r.fsys == nil {
		return typeRef{}, false, nil
	}
	target, err := r.file(path.Join(sc.dir, ref.from))
	if err != nil {
		return typeRef{}, false, err
	}
	if target == nil {
		return typeRef{}, false, nil
	}
	return r.lookup(ref.name, target, depth+1)
}

// file loads the module at p, trying the TypeScript resolution suffixes.
func (r *resolver) file(p string) (*scope, error) {
	p = path.Clean(p)
	candidates := []string{p + ".ts", p + ".d.ts", p + ".tsx", path.Join(p, "index.ts")}
	if strings.HasSuffix(p, ".ts") || strings.HasSuffix(p, ".tsx") {
		candidates = append([]string{p}, candidates...)
	}

	for _, name := range candidates {
		if sc, ok := r.files[name]; ok {
			return sc, nil
		}
		data, err := fs.ReadFile(r.fsys, name)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		sc, err := r.parse(string(data), name, path.Dir(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompile, err)
		}
		r.files[name] = sc
		return sc, nil
	}
	return nil, nil
}

func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	return s
}

func children(n *sitter.Node) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := range count {
		out = append(out, n.Child(i))
	}
	return out
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := range count {
		out = append(out, n.NamedChild(i))
	}
	return out
}

func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	for _, c := range children(n) {
		if c.Type() == kind {
			return c
		}
	}
	return nil
}

func field(n *sitter.Node, name string) *sitter.Node {
	c := n.ChildByFieldName(name)
	if c == nil || c.IsNull() {
		return nil
	}
	return c
}
