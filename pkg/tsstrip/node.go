package tsstrip

import (
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/detype/pkg/typestrip"
)

// offset converts a tree-sitter byte offset to an int index.
func offset(u uint32) int {
	v, err := safecast.Conv[int](u)
	if err != nil {
		panic(fmt.Sprintf("tree-sitter offset %d: %v", u, err))
	}
	return v
}

func start(n *sitter.Node) int { return offset(n.StartByte()) }
func end(n *sitter.Node) int   { return offset(n.EndByte()) }

// node adapts a tree-sitter node to typestrip.Node.
type node struct {
	n   *sitter.Node
	src []byte
}

func wrap(n *sitter.Node, src []byte) typestrip.Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return &node{n: n, src: src}
}

func (w *node) Kind() string   { return w.n.Type() }
func (w *node) StartByte() int { return start(w.n) }
func (w *node) EndByte() int   { return end(w.n) }
func (w *node) Text() string   { return w.n.Content(w.src) }
func (w *node) Parent() typestrip.Node {
	return wrap(w.n.Parent(), w.src)
}

func (w *node) ChildByField(name string) typestrip.Node {
	return wrap(w.n.ChildByFieldName(name), w.src)
}

func (w *node) NamedChildren() []typestrip.Node {
	count := int(w.n.NamedChildCount())
	children := make([]typestrip.Node, 0, count)
	for i := range count {
		children = append(children, wrap(w.n.NamedChild(i), w.src))
	}
	return children
}

// children returns all children of n, anonymous tokens included.
func children(n *sitter.Node) []*sitter.Node {
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := range count {
		out = append(out, n.Child(i))
	}
	return out
}

// namedChildren returns the named children of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := range count {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// childOfKind returns the first direct child of n with the given kind.
func childOfKind(n *sitter.Node, kind string) *sitter.Node {
	for _, c := range children(n) {
		if c.Type() == kind {
			return c
		}
	}
	return nil
}

// field returns the named field child of n, or nil.
func field(n *sitter.Node, name string) *sitter.Node {
	c := n.ChildByFieldName(name)
	if c == nil || c.IsNull() {
		return nil
	}
	return c
}
