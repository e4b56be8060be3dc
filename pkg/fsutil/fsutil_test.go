package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("let a: number\n"), 0o644))

	got, info, err := fsutil.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "let a: number\n", string(got))
	assert.Equal(t, path, info.Path)
	assert.Equal(t, int64(len(got)), info.Size)
	assert.NotEqual(t, [32]byte{}, info.Hash)

	_, _, err = fsutil.ReadFile(context.Background(), filepath.Join(dir, "missing.ts"))
	require.ErrorIs(t, err, fsutil.ErrNotFound)

	_, _, err = fsutil.ReadFile(context.Background(), dir)
	require.ErrorIs(t, err, fsutil.ErrIsDirectory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = fsutil.ReadFile(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReadText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain utf-8", []byte("const a = 'é'\n"), "const a = 'é'\n"},
		{"utf-8 bom dropped", []byte("\xEF\xBB\xBFconst a = 1\n"), "const a = 1\n"},
		{"utf-16le with bom", []byte("\xFF\xFEa\x00=\x001\x00"), "a=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "a.ts")
			require.NoError(t, os.WriteFile(path, tt.raw, 0o644))

			got, info, err := fsutil.ReadText(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(len(tt.raw)), info.Size)
		})
	}
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "a.ts")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	_, info, err := fsutil.ReadFile(ctx, path)
	require.NoError(t, err)

	modified, err := fsutil.CheckModified(ctx, info)
	require.NoError(t, err)
	assert.False(t, modified)

	require.NoError(t, os.WriteFile(path, []byte("two!"), 0o644))
	later := info.ModTime.Add(time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	modified, err = fsutil.CheckModified(ctx, info)
	require.NoError(t, err)
	assert.True(t, modified)

	require.NoError(t, os.Remove(path))
	modified, err = fsutil.CheckModified(ctx, info)
	require.NoError(t, err)
	assert.True(t, modified, "deleted file counts as modified")

	_, err = fsutil.CheckModified(ctx, nil)
	require.ErrorIs(t, err, fsutil.ErrNilFileInfo)
}

func TestNormalizeNewlines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\nb\n\nc", fsutil.NormalizeNewlines("a\r\nb\r\n\r\nc"))
	assert.Equal(t, "a\rb", fsutil.NormalizeNewlines("a\rb"))
}
