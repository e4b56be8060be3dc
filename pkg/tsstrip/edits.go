package tsstrip

import (
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/detype/pkg/splice"
)

func isHSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// delete schedules [from, to) for removal.
func (s *stripper) delete(from, to int) {
	if from < to {
		s.deletions = append(s.deletions, span{start: from, end: to})
	}
}

// isDeleted reports whether [from, to) lies inside a scheduled deletion.
func (s *stripper) isDeleted(from, to int) bool {
	for _, d := range s.deletions {
		if d.start <= from && to <= d.end {
			return true
		}
	}
	return false
}

func (s *stripper) skipSpaceBack(i int) int {
	for i > 0 && isHSpace(s.src[i-1]) {
		i--
	}
	return i
}

func (s *stripper) skipSpaceForward(i int) int {
	for i < len(s.src) && isHSpace(s.src[i]) {
		i++
	}
	return i
}

// extendSemicolon moves i past a trailing semicolon on the same line.
func (s *stripper) extendSemicolon(i int) int {
	j := s.skipSpaceForward(i)
	if j < len(s.src) && s.src[j] == ';' {
		return j + 1
	}
	return i
}

// deleteToken removes a keyword and the spaces after it.
func (s *stripper) deleteToken(tok *sitter.Node) {
	s.delete(start(tok), s.skipSpaceForward(end(tok)))
}

// deleteLines removes [from, to) along with the horizontal whitespace that
// would be left dangling. A range that fills its lines leaves them empty.
func (s *stripper) deleteLines(from, to int) {
	lineStart := s.skipSpaceBack(from)
	lineEnd := s.skipSpaceForward(to)
	atStart := lineStart == 0 || s.src[lineStart-1] == '\n'
	atEnd := lineEnd == len(s.src) || s.src[lineEnd] == '\n'

	switch {
	case atEnd:
		s.delete(lineStart, lineEnd)
	case atStart:
		s.delete(from, lineEnd)
	default:
		s.delete(from, to)
	}
}

// deleteStatement removes a declaration together with an export or
// expression statement that only wraps it.
func (s *stripper) deleteStatement(n *sitter.Node) {
	target := n
	if parent := n.Parent(); parent != nil {
		switch parent.Type() {
		case "export_statement":
			target = parent
		case "expression_statement":
			if parent.NamedChildCount() == 1 {
				target = parent
			}
		}
	}
	s.deleteLines(start(target), s.extendSemicolon(end(target)))
}

// deleteListItem removes n from a comma-separated list.
func (s *stripper) deleteListItem(n *sitter.Node) {
	if next := n.NextSibling(); next != nil && next.Type() == "," {
		s.delete(start(n), s.skipSpaceForward(end(next)))
		return
	}
	if prev := n.PrevSibling(); prev != nil && prev.Type() == "," {
		s.delete(start(prev), end(n))
		return
	}
	s.delete(start(n), end(n))
}

// mergeSpans sorts spans and folds overlapping ones.
func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return a.end - b.end
	})

	merged := []span{sorted[0]}
	for _, sp := range sorted[1:] {
		last := &merged[len(merged)-1]
		if sp.start < last.end {
			last.end = max(last.end, sp.end)
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// swallowed reports whether edit falls inside one of the deleted spans.
func swallowed(spans []span, edit splice.Edit) bool {
	for _, d := range spans {
		if edit.Len() == 0 {
			if d.start < edit.Start && edit.Start < d.end {
				return true
			}
			continue
		}
		if d.start <= edit.Start && edit.End <= d.end {
			return true
		}
	}
	return false
}

// print applies the scheduled edits to the source. With RetainLines each
// deleted range is replaced by the newlines it contained.
func (s *stripper) print() (string, error) {
	deleted := mergeSpans(s.deletions)

	edits := make([]splice.Edit, 0, len(deleted)+len(s.replacements))
	for _, d := range deleted {
		text := ""
		if s.cfg.RetainLines {
			text = strings.Repeat("\n", strings.Count(s.text[d.start:d.end], "\n"))
		}
		edits = append(edits, splice.Edit{Start: d.start, End: d.end, Text: text})
	}
	for _, r := range s.replacements {
		if !swallowed(deleted, r) {
			edits = append(edits, r)
		}
	}

	prepared, err := splice.Prepare(edits, len(s.src))
	if err != nil {
		return "", err
	}
	return splice.Apply(s.text, prepared), nil
}
