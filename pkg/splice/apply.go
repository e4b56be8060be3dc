package splice

import "strings"

// Apply substitutes prepared edits into source.
// Edits must come from Prepare.
func Apply(source string, edits []Edit) string {
	if len(edits) == 0 {
		return source
	}

	delta := 0
	for _, e := range edits {
		delta += len(e.Text) - e.Len()
	}

	var out strings.Builder
	out.Grow(max(len(source)+delta, 0))

	cursor := 0
	for _, e := range edits {
		out.WriteString(source[cursor:e.Start])
		out.WriteString(e.Text)
		cursor = e.End
	}
	out.WriteString(source[cursor:])

	return out.String()
}
