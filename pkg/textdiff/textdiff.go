// Package textdiff renders line-based unified diffs between a typed input
// and its transformed output.
package textdiff

import (
	"fmt"
	"strings"
)

// Op is the kind of a diff line.
type Op int

// Diff line kinds.
const (
	Equal Op = iota
	Insert
	Delete
)

// contextLines is the number of unchanged lines shown around a change.
const contextLines = 3

// Line is one line of a hunk, without its newline.
type Line struct {
	Op   Op
	Text string
}

// Hunk is a run of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	FromStart, FromCount int
	ToStart, ToCount     int
	Lines                []Line
}

// Diff is a unified diff between two named texts.
type Diff struct {
	From, To string
	Hunks    []Hunk

	Inserted int
	Deleted  int
}

// Compute diffs a against b line by line. It returns nil when the texts are
// equal.
func Compute(from, to, a, b string) *Diff {
	if a == b {
		return nil
	}
	ops := editScript(lines(a), lines(b))

	d := &Diff{From: from, To: to, Hunks: hunks(ops)}
	for _, l := range ops {
		switch l.Op {
		case Insert:
			d.Inserted++
		case Delete:
			d.Deleted++
		}
	}
	if len(d.Hunks) == 0 {
		return nil
	}
	return d
}

func lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// editScript returns a shortest edit script from a to b, built from the
// suffix table of their longest common subsequence.
func editScript(a, b []string) []Line {
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]Line, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			ops = append(ops, Line{Equal, a[i]})
			i++
			j++
		case j == len(b) || (i < len(a) && lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, Line{Delete, a[i]})
			i++
		default:
			ops = append(ops, Line{Insert, b[j]})
			j++
		}
	}
	return ops
}

// hunks groups an edit script into hunks, merging changes whose context
// would touch or overlap.
func hunks(ops []Line) []Hunk {
	var out []Hunk
	fromLine, toLine := 1, 1

	for k := 0; k < len(ops); {
		if ops[k].Op == Equal {
			fromLine++
			toLine++
			k++
			continue
		}

		start := max(k-contextLines, 0)
		h := Hunk{FromStart: fromLine - (k - start), ToStart: toLine - (k - start)}

		// Extend end past changes until a gap longer than two contexts.
		end := k
		for end < len(ops) {
			if ops[end].Op != Equal {
				end++
				continue
			}
			gap := end
			for gap < len(ops) && ops[gap].Op == Equal {
				gap++
			}
			if gap == len(ops) || gap-end > 2*contextLines {
				end = min(end+contextLines, len(ops))
				break
			}
			end = gap
		}

		for _, l := range ops[start:end] {
			h.Lines = append(h.Lines, l)
			if l.Op != Insert {
				h.FromCount++
			}
			if l.Op != Delete {
				h.ToCount++
			}
		}
		for _, l := range ops[k:end] {
			if l.Op != Insert {
				fromLine++
			}
			if l.Op != Delete {
				toLine++
			}
		}
		out = append(out, h)
		k = end
	}
	return out
}

// String renders the diff in unified format.
func (d *Diff) String() string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", d.From, d.To)
	for _, h := range d.Hunks {
		b.WriteString(h.Header())
		b.WriteByte('\n')
		for _, l := range h.Lines {
			b.WriteString(l.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Header returns the "@@ -a,b +c,d @@" line of the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", span(h.FromStart, h.FromCount), span(h.ToStart, h.ToCount))
}

// span formats a hunk range. An empty range names the line before it.
func span(start, count int) string {
	if count == 0 {
		start--
	}
	return fmt.Sprintf("%d,%d", start, count)
}

func (l Line) String() string {
	switch l.Op {
	case Insert:
		return "+" + l.Text
	case Delete:
		return "-" + l.Text
	}
	return " " + l.Text
}
