package blankline_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/detype/pkg/blankline"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single newline untouched", "a\nb", "a\nb"},
		{"one blank line", "a\n\nb", "a\n/* @detype: empty-line=2 */\nb"},
		{"two blank lines", "a\n\n\nb", "a\n/* @detype: empty-line=3 */\nb"},
		{"separate runs", "a\n\nb\n\n\nc", "a\n/* @detype: empty-line=2 */\nb\n/* @detype: empty-line=3 */\nc"},
		{"leading run", "\n\na", "\n/* @detype: empty-line=2 */\na"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := blankline.Encode(tc.in); got != tc.want {
				t.Errorf("Encode(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestDecodeAfterLossyPass(t *testing.T) {
	t.Parallel()

	encoded := blankline.Encode("const a = 1\n\n\nconst b = 2\n")
	// Simulate a printer that left an empty line where a declaration was
	// removed; that run must collapse while the marker expands.
	printed := strings.Replace(encoded, "const b", "\n\nconst b", 1)

	if got, want := blankline.Decode(printed), "const a = 1\n\n\nconst b = 2\n"; got != want {
		t.Errorf("Decode() = %q, want %q", got, want)
	}
}

func TestCollapse(t *testing.T) {
	t.Parallel()

	if got := blankline.Collapse("a\n\n\n\nb\nc\n\n"); got != "a\nb\nc\n" {
		t.Errorf("Collapse() = %q", got)
	}
}

func TestIsMarker(t *testing.T) {
	t.Parallel()

	if !blankline.IsMarker(" @detype: empty-line=4 ") {
		t.Error("IsMarker() = false for marker value")
	}
	if blankline.IsMarker(" TODO: blank ") {
		t.Error("IsMarker() = true for ordinary comment")
	}
}

func TestOriginalLine(t *testing.T) {
	t.Parallel()

	text := "a\n\nb\n\n\n\nc\nd\n"
	encoded := blankline.Encode(text)
	original := strings.Split(text, "\n")

	for i, l := range strings.Split(encoded, "\n") {
		if l == "" || blankline.IsMarker(l) {
			continue
		}
		got := blankline.OriginalLine(encoded, i+1)
		if original[got-1] != l {
			t.Errorf("OriginalLine(%d) = %d, line %q; want line %q", i+1, got, original[got-1], l)
		}
	}
	if got := blankline.OriginalLine(encoded, 0); got != 0 {
		t.Errorf("OriginalLine(0) = %d, want 0", got)
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("")
	f.Add("a\n\nb")
	f.Add("\n\n\n")
	f.Add("x\r\n\r\ny")
	f.Add("`template\n\n\nliteral`\n")

	f.Fuzz(func(t *testing.T, text string) {
		if strings.Contains(text, blankline.MarkerPrefix) {
			return
		}
		if got := blankline.Decode(blankline.Encode(text)); got != text {
			t.Errorf("Decode(Encode(%q)) = %q", text, got)
		}
	})
}
