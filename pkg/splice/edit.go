// Package splice applies range-based text substitutions to a document.
//
// Edits always reference byte offsets in the original document. They are
// collected in any order, then sorted, checked for overlap, and applied in a
// single pass that copies untouched spans and substitutes at each edit.
package splice

// Edit replaces the bytes [Start, End) of the original document with Text.
type Edit struct {
	// Start is the byte offset where the edit begins (inclusive).
	Start int

	// End is the byte offset where the edit ends (exclusive).
	End int

	// Text is the replacement text.
	Text string
}

// Len returns the number of original bytes covered by the edit.
func (e Edit) Len() int {
	return e.End - e.Start
}

// Builder accumulates edits against one source document.
type Builder struct {
	source string
	edits  []Edit
}

// NewBuilder creates a Builder for source.
func NewBuilder(source string) *Builder {
	return &Builder{source: source}
}

// Source returns the original document.
func (b *Builder) Source() string {
	return b.source
}

// Replace adds an edit that replaces bytes [start, end) with text.
func (b *Builder) Replace(start, end int, text string) {
	b.edits = append(b.edits, Edit{Start: start, End: end, Text: text})
}

// Insert adds an edit that inserts text at offset.
func (b *Builder) Insert(offset int, text string) {
	b.Replace(offset, offset, text)
}

// Delete adds an edit that removes bytes [start, end).
func (b *Builder) Delete(start, end int) {
	b.Replace(start, end, "")
}

// Edits returns the accumulated edits in insertion order.
func (b *Builder) Edits() []Edit {
	return b.edits
}

// Len returns the number of accumulated edits.
func (b *Builder) Len() int {
	return len(b.edits)
}

// String applies the accumulated edits and returns the new document.
func (b *Builder) String() (string, error) {
	prepared, err := Prepare(b.edits, len(b.source))
	if err != nil {
		return "", err
	}
	return Apply(b.source, prepared), nil
}
