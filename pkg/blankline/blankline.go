// Package blankline protects intentional blank lines from passes that
// collapse newline runs.
//
// Encode replaces every run of two or more newlines with a marker comment
// that records the run length. After a lossy pass has squeezed all newline
// runs, Decode collapses whatever runs that pass introduced and expands each
// marker back into the blank lines it stood for.
package blankline

import (
	"regexp"
	"strconv"
	"strings"
)

// MarkerPrefix is the literal text every marker comment starts with.
// Input text must not contain it.
const MarkerPrefix = "@detype: empty-line="

var (
	newlineRun = regexp.MustCompile(`\n\n+`)
	marker     = regexp.MustCompile(`/\* @detype: empty-line=([0-9]+) \*/`)
)

// Marker returns the comment that encodes a run of n newlines.
func Marker(n int) string {
	return "/* " + MarkerPrefix + strconv.Itoa(n) + " */"
}

// IsMarker reports whether a comment value (text between the comment
// delimiters) is a blank-line marker.
func IsMarker(value string) bool {
	return strings.Contains(value, MarkerPrefix)
}

// Encode replaces each maximal run of 2+ newlines with "\n<marker N>\n".
func Encode(text string) string {
	return newlineRun.ReplaceAllStringFunc(text, func(run string) string {
		return "\n" + Marker(len(run)) + "\n"
	})
}

// Collapse squeezes every run of 2+ newlines into a single newline.
func Collapse(text string) string {
	return newlineRun.ReplaceAllString(text, "\n")
}

// Decode collapses newline runs and then replaces each marker with N-2
// newlines. The encoder surrounded the marker with one newline on each side,
// and those two are still in place, so N-2 restores the original run.
func Decode(text string) string {
	text = Collapse(text)
	return marker.ReplaceAllStringFunc(text, func(m string) string {
		n, err := strconv.Atoi(marker.FindStringSubmatch(m)[1])
		if err != nil || n < 2 {
			return ""
		}
		return strings.Repeat("\n", n-2)
	})
}

// OriginalLine maps a 1-based line of encoded text back to the line it came
// from in the text given to Encode. A marker line maps to the first blank
// line it stands for.
func OriginalLine(encoded string, line int) int {
	if line < 1 {
		return line
	}
	shift := 0
	for i, l := range strings.SplitN(encoded, "\n", line) {
		if i == line-1 {
			break
		}
		m := marker.FindStringSubmatch(l)
		if m == nil || strings.TrimSpace(l) != m[0] {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > 2 {
			shift += n - 2
		}
	}
	return line + shift
}
