// Package directive handles @detype replace/with/end comment blocks.
//
// A block pairs the real implementation with a commented-out substitute:
//
//	// @detype: replace
//	const x = typedHelper()
//	// @detype: with
//	// const x = plainHelper()
//	// @detype: end
//
// Process keeps the real implementation, so type removal sees the code that
// actually runs. Remove keeps the substitute with its comment markers
// stripped, which is the version meant for distribution. Both fail closed: a
// block with a missing marker leaves the whole input untouched.
package directive

import (
	"errors"
	"regexp"
	"strings"
)

// Marker lines, each including its terminating newline.
const (
	ReplaceMarker = "// @detype: replace\n"
	WithMarker    = "// @detype: with\n"
	EndMarker     = "// @detype: end\n"
)

// ErrMalformed reports a replace marker without a following with or end marker.
var ErrMalformed = errors.New("malformed @detype directive block")

var (
	lineComment = regexp.MustCompile(`(?m)^\s*//`)
	// substituteComment keeps the indentation and drops one space after the
	// marker, so "  // b()" becomes "  b()".
	substituteComment = regexp.MustCompile(`(?m)^([ \t]*)// ?`)
)

// Block locates one directive block by byte offsets into the scanned text.
type Block struct {
	// Start is the offset of the replace marker.
	Start int
	// With is the offset of the with marker.
	With int
	// End is the offset of the end marker.
	End int
	// Stop is the offset just past the end marker.
	Stop int
}

// Original returns the real implementation between replace and with.
func (b Block) Original(text string) string {
	return text[b.Start+len(ReplaceMarker) : b.With]
}

// Substitute returns the commented alternative between with and end.
func (b Block) Substitute(text string) string {
	return text[b.With+len(WithMarker) : b.End]
}

// next finds the first block whose replace marker is at or after from.
// It returns ok=false when there is no further replace marker and
// ErrMalformed when one is found without its partners.
func next(text string, from int) (Block, bool, error) {
	rel := strings.Index(text[from:], ReplaceMarker)
	if rel < 0 {
		return Block{}, false, nil
	}
	start := from + rel

	rel = strings.Index(text[start:], WithMarker)
	if rel < 0 {
		return Block{}, false, ErrMalformed
	}
	with := start + rel

	afterWith := with + len(WithMarker)
	rel = strings.Index(text[afterWith:], EndMarker)
	if rel < 0 {
		return Block{}, false, ErrMalformed
	}
	end := afterWith + rel

	return Block{Start: start, With: with, End: end, Stop: end + len(EndMarker)}, true, nil
}

// Blocks lists every directive block in text without rewriting it.
func Blocks(text string) ([]Block, error) {
	var blocks []Block
	from := 0
	for {
		block, ok, err := next(text, from)
		if err != nil {
			return nil, err
		}
		if !ok {
			return blocks, nil
		}
		blocks = append(blocks, block)
		from = block.Stop
	}
}

// rewrite replaces each block with pick(block, text) one block at a time,
// resuming the scan after the inserted text.
func rewrite(input string, pick func(Block, string) string) string {
	text := input
	from := 0
	for {
		block, ok, err := next(text, from)
		if err != nil {
			return input
		}
		if !ok {
			return text
		}
		kept := pick(block, text)
		text = text[:block.Start] + kept + text[block.Stop:]
		from = block.Start + len(kept)
	}
}

// Process replaces every block with the real implementation between replace
// and with, stripping a leading comment marker from each of its lines.
func Process(text string) string {
	return rewrite(text, func(b Block, text string) string {
		return lineComment.ReplaceAllString(b.Original(text), "")
	})
}

// Remove replaces every block with its commented substitute, uncommented.
// Callers format the result.
func Remove(text string) string {
	return rewrite(text, func(b Block, text string) string {
		return substituteComment.ReplaceAllString(b.Substitute(text), "$1")
	})
}
