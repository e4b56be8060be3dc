package directive_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/detype/pkg/directive"
)

const block = "// @detype: replace\nA\n// @detype: with\n// B\n// @detype: end\n"

func TestProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no directives", "const a = 1\n", "const a = 1\n"},
		{"single block", block, "A\n"},
		{"surrounding text kept", "x\n" + block + "y\n", "x\nA\ny\n"},
		{"two blocks", block + "mid\n" + block, "A\nmid\nA\n"},
		{
			name: "commented implementation lines",
			in:   "// @detype: replace\n  // foo()\nbar()\n// @detype: with\n// baz()\n// @detype: end\n",
			want: " foo()\nbar()\n",
		},
		{
			name: "typed implementation kept",
			in: "// @detype: replace\nconst a: number = f<number>()\n" +
				"// @detype: with\n// const a = f()\n// @detype: end\n",
			want: "const a: number = f<number>()\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := directive.Process(tc.in); got != tc.want {
				t.Errorf("Process() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single block", block, "B\n"},
		{"two blocks", "a\n" + block + block + "b\n", "a\nB\nB\nb\n"},
		{
			name: "indentation kept",
			in:   "// @detype: replace\nfoo()\n// @detype: with\n  // bar()\n  //baz()\n// @detype: end\n",
			want: "  bar()\n  baz()\n",
		},
		{
			name: "hello example",
			in: "// @detype: replace\nconsole.log(\"Hello from TypeScript\");\n" +
				"// @detype: with\n// console.log(\"Hello from JavaScript\");\n// @detype: end\n",
			want: "console.log(\"Hello from JavaScript\");\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := directive.Remove(tc.in); got != tc.want {
				t.Errorf("Remove() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMalformedBlocksFailClosed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"// @detype: replace\nA\n",
		"// @detype: replace\nA\n// @detype: with\n// B\n",
		block + "// @detype: replace\nC\n",
		"// @detype: replace\nA\n// @detype: end\n// @detype: with\n",
	}

	for _, in := range inputs {
		if got := directive.Process(in); got != in {
			t.Errorf("Process(%q) = %q, want input unchanged", in, got)
		}
		if got := directive.Remove(in); got != in {
			t.Errorf("Remove(%q) = %q, want input unchanged", in, got)
		}
		if _, err := directive.Blocks(in); !errors.Is(err, directive.ErrMalformed) {
			t.Errorf("Blocks(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestBlocks(t *testing.T) {
	t.Parallel()

	text := "x\n" + block
	blocks, err := directive.Blocks(text)
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Start != 2 || b.Stop != len(text) {
		t.Errorf("block = %+v", b)
	}
	if got := b.Original(text); got != "A\n" {
		t.Errorf("Original() = %q", got)
	}
	if got := b.Substitute(text); got != "// B\n" {
		t.Errorf("Substitute() = %q", got)
	}
}
