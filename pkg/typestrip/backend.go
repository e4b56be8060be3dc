package typestrip

import "context"

// Backend parses typed source, runs plugins, deletes type-only syntax and
// prints the result. Implementations must keep line numbers 1:1 with the
// input when Config.RetainLines is set.
type Backend interface {
	Transform(ctx context.Context, source string, cfg *Config) (*Output, error)
}

// Output is the printed result of a backend run.
type Output struct {
	Code string
}

// Config is the mutable backend configuration for one run.
type Config struct {
	// Filename selects the grammar (.ts or .tsx) and appears in errors.
	Filename string

	// RetainLines asks the printer to keep every surviving line on its
	// original line number.
	RetainLines bool

	// Plugins are visited in order for every node of a matching kind.
	Plugins []Plugin

	// ShouldPrintComment filters comments by their current value (the text
	// between the comment delimiters). A nil filter prints every comment.
	ShouldPrintComment func(value string) bool
}

// Plugin is a named set of node-kind rewrite rules.
type Plugin struct {
	Name    string
	Visitor map[string]VisitFunc
}

// VisitFunc is called for each node whose kind keys it in a Plugin visitor.
type VisitFunc func(p *Path)

// Node is a syntax node of the typed source tree. Kinds are the backend's
// grammar names (for example "interface_declaration").
type Node interface {
	Kind() string
	StartByte() int
	EndByte() int
	Text() string
	Parent() Node
	ChildByField(name string) Node
	NamedChildren() []Node
}

// Comment is a comment attached to the node that follows it.
type Comment struct {
	Start int
	End   int

	// Value is the text between the comment delimiters. Plugins may relabel
	// it; the printer filters on the relabeled value.
	Value string
}

// Path is the visitor's view of one node.
type Path struct {
	Node Node

	// LeadingComments are the comments directly above Node (or above the
	// export statement wrapping it), in source order.
	LeadingComments []*Comment

	// Source is the text the backend parsed.
	Source string

	replace func(target, replacement Node)
}

// NewPath builds a Path. Backends supply replace, which substitutes the
// range of target with the printed range of replacement.
func NewPath(node Node, comments []*Comment, source string, replace func(target, replacement Node)) *Path {
	return &Path{Node: node, LeadingComments: comments, Source: source, replace: replace}
}

// Replace substitutes target with replacement, which must lie inside target.
func (p *Path) Replace(target, replacement Node) {
	if p.replace != nil {
		p.replace(target, replacement)
	}
}

// ReplaceWith substitutes the visited node with one of its descendants.
func (p *Path) ReplaceWith(replacement Node) {
	p.Replace(p.Node, replacement)
}
