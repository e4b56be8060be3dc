package typestrip_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/tsstrip"
	"github.com/yaklabco/detype/pkg/typestrip"
)

// echoBackend returns its input and records the configuration it saw.
type echoBackend struct {
	cfg    *typestrip.Config
	source string
	err    error
	nilOut bool
}

func (b *echoBackend) Transform(_ context.Context, source string, cfg *typestrip.Config) (*typestrip.Output, error) {
	b.cfg, b.source = cfg, source
	if b.err != nil {
		return nil, b.err
	}
	if b.nilOut {
		return nil, nil
	}
	return &typestrip.Output{Code: source}, nil
}

func TestEngineEncodesBlankLines(t *testing.T) {
	t.Parallel()

	backend := &echoBackend{}
	got, err := typestrip.New(backend).RemoveTypes(context.Background(), "a\n\n\nb\n", "x.ts", typestrip.Options{})
	require.NoError(t, err)

	assert.Equal(t, "a\n/* @detype: empty-line=3 */\nb\n", backend.source)
	assert.Equal(t, "a\n\n\nb\n", got)
	assert.Equal(t, "x.ts", backend.cfg.Filename)
	assert.True(t, backend.cfg.RetainLines)
}

func TestEngineCommentFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      typestrip.Options
		value     string
		wantPrint bool
	}{
		{"plain comment", typestrip.Options{}, " note", true},
		{"remove-me label", typestrip.Options{}, typestrip.RemoveMeLabel, false},
		{"ts-ignore kept by default", typestrip.Options{}, " @ts-ignore", true},
		{"ts-ignore dropped", typestrip.Options{RemoveTSComments: true}, " @ts-ignore", false},
		{"ts-expect-error dropped", typestrip.Options{RemoveTSComments: true}, "@ts-expect-error: why", false},
		{"mention later in comment kept", typestrip.Options{RemoveTSComments: true}, " see @ts-ignore", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := &echoBackend{}
			_, err := typestrip.New(backend).RemoveTypes(context.Background(), "a\n", "x.ts", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrint, backend.cfg.ShouldPrintComment(tt.value))
		})
	}
}

func TestEngineCustomizeConfig(t *testing.T) {
	t.Parallel()

	backend := &echoBackend{}
	opts := typestrip.Options{
		CustomizeConfig: func(cfg *typestrip.Config) {
			cfg.Plugins = append(cfg.Plugins, typestrip.Plugin{Name: "extra"})
		},
	}
	_, err := typestrip.New(backend).RemoveTypes(context.Background(), "a\n", "x.ts", opts)
	require.NoError(t, err)

	require.Len(t, backend.cfg.Plugins, 2)
	assert.Equal(t, "detype-comment-remover", backend.cfg.Plugins[0].Name)
	assert.Equal(t, "extra", backend.cfg.Plugins[1].Name)
}

func TestEngineErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := typestrip.New(&echoBackend{err: boom}).RemoveTypes(context.Background(), "a", "x.ts", typestrip.Options{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "x.ts")

	_, err = typestrip.New(&echoBackend{nilOut: true}).RemoveTypes(context.Background(), "a", "x.ts", typestrip.Options{})
	require.ErrorIs(t, err, typestrip.ErrNoOutput)

	_, err = typestrip.New(nil).RemoveTypes(context.Background(), "a", "x.ts", typestrip.Options{})
	require.ErrorIs(t, err, typestrip.ErrNoBackend)
}

func TestRemoveTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		opts   typestrip.Options
		want   string
	}{
		{
			name:   "blank lines around removed interface",
			source: "const a = 1\n\n\ninterface B {}\nconst c = 2\n",
			want:   "const a = 1\n\n\nconst c = 2\n",
		},
		{
			name:   "attached comment removed with declaration",
			source: "// about B\ninterface B {}\nconst c = 2\n",
			want:   "\nconst c = 2\n",
		},
		{
			name:   "comment separated by blank line kept",
			source: "// keep\n\ninterface B {}\nconst c = 2\n",
			want:   "// keep\n\nconst c = 2\n",
		},
		{
			name:   "comment on other code kept",
			source: "// about c\nconst c: number = 2\n",
			want:   "// about c\nconst c = 2\n",
		},
		{
			name:   "ts comments removed on request",
			source: "// @ts-ignore\nfoo()\n",
			opts:   typestrip.Options{RemoveTSComments: true},
			want:   "\nfoo()\n",
		},
		{
			name:   "ts comments kept by default",
			source: "// @ts-ignore\nfoo()\n",
			want:   "// @ts-ignore\nfoo()\n",
		},
		{
			name:   "directive implementation used",
			source: "// @detype: replace\nconst a: number = f<number>()\n// @detype: with\n// const a = f()\n// @detype: end\n",
			want:   "const a = f()\n",
		},
	}

	engine := typestrip.New(tsstrip.New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := engine.RemoveTypes(context.Background(), tt.source, "input.ts", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoveTypesIdempotent(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		"import { ref } from 'vue'",
		"",
		"// counter state",
		"const count = ref<number>(0)",
		"",
		"",
		"export function inc(by: number = 1): void {",
		"  count.value += by",
		"}",
		"",
	}, "\n")

	engine := typestrip.New(tsstrip.New())
	once, err := engine.RemoveTypes(context.Background(), source, "input.ts", typestrip.Options{})
	require.NoError(t, err)
	twice, err := engine.RemoveTypes(context.Background(), once, "input.ts", typestrip.Options{})
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, strings.Count(source, "\n"), strings.Count(once, "\n"))
}
