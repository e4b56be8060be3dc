package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/cache"
	"github.com/yaklabco/detype/pkg/detype"
	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/runner"
	"github.com/yaklabco/detype/pkg/tsstrip"
)

func newRunner() *runner.Runner {
	return runner.New(detype.New(format.None{}))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/a.ts":         "const a: number = 1\n",
		"src/b/c.ts":       "export function f(x?: string): void {}\n",
		"src/b/d.ts":       "const d: string = 'd'\n",
		"src/b/types.d.ts": "declare const x: number\n",
	})

	result, err := newRunner().Run(context.Background(), runner.Options{
		Input:      "src",
		Output:     "lib",
		WorkingDir: dir,
		Jobs:       2,
	})
	require.NoError(t, err)
	require.False(t, result.HasFailures())

	require.Len(t, result.Files, 3)
	for i, name := range []string{"a.ts", "b/c.ts", "b/d.ts"} {
		assert.Equal(t, filepath.Join(dir, "src", filepath.FromSlash(name)), result.Files[i].Input)
		assert.True(t, result.Files[i].Written)
	}

	assert.Equal(t, runner.Stats{
		FilesDiscovered:  3,
		FilesTransformed: 3,
		FilesWritten:     3,
	}, result.Stats)

	assert.Equal(t, "const a = 1\n", readFile(t, filepath.Join(dir, "lib", "a.js")))
	assert.Equal(t, "export function f(x) {}\n", readFile(t, filepath.Join(dir, "lib", "b", "c.js")))
	assert.Equal(t, "const d = 'd'\n", readFile(t, filepath.Join(dir, "lib", "b", "d.js")))
	assert.NoFileExists(t, filepath.Join(dir, "lib", "b", "types.d.js"))
}

func TestRun_Unchanged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.ts": "const a: number = 1\n",
		"a.js": "const a = 1\n",
	})

	result, err := newRunner().Run(context.Background(), runner.Options{Input: "a.ts", WorkingDir: dir})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.False(t, result.Files[0].Written)
	assert.Equal(t, 1, result.Stats.FilesUnchanged)
}

func TestRun_DryRunWithDiff(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": "const a: number = 1\nfoo()\n"})

	result, err := newRunner().Run(context.Background(), runner.Options{
		Input:      "a.ts",
		WorkingDir: dir,
		DryRun:     true,
		Diff:       true,
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	outcome := result.Files[0]
	assert.False(t, outcome.Written)
	require.NotNil(t, outcome.Diff)
	assert.Equal(t, 1, outcome.Diff.Inserted)
	assert.Equal(t, 1, outcome.Diff.Deleted)
	assert.Contains(t, outcome.Diff.String(), "-const a: number = 1\n")
	assert.Contains(t, outcome.Diff.String(), "+const a = 1\n")
	assert.NoFileExists(t, filepath.Join(dir, "a.js"))
}

func TestRun_MagicInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := "// @detype: replace\nA\n// @detype: with\n// B\n// @detype: end\n"
	writeTree(t, dir, map[string]string{"a.ts": source})

	result, err := newRunner().Run(context.Background(), runner.Options{
		Input:      ".",
		WorkingDir: dir,
		Mode:       runner.ModeMagic,
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "a.ts"), result.Files[0].Output)
	assert.Equal(t, "B\n", readFile(t, filepath.Join(dir, "a.ts")))
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"bad.ts":  "const = ;\n",
		"good.ts": "const a: number = 1\n",
	})

	result, err := newRunner().Run(context.Background(), runner.Options{Input: ".", WorkingDir: dir})
	require.NoError(t, err)
	require.True(t, result.HasFailures())

	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, filepath.Join(dir, "bad.ts"), failures[0].Input)
	require.ErrorIs(t, failures[0].Error, tsstrip.ErrSyntax)

	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.Equal(t, 1, result.Stats.FilesTransformed)
	assert.NoFileExists(t, filepath.Join(dir, "bad.js"))
	assert.Equal(t, "const a = 1\n", readFile(t, filepath.Join(dir, "good.js")))
}

func TestRun_Cache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": "const a: number = 1\n"})

	c, err := cache.OpenDir(t.TempDir())
	require.NoError(t, err)

	r := newRunner()
	r.Cache = c
	r.CacheSalt = "test"
	opts := runner.Options{Input: "a.ts", WorkingDir: dir}

	first, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Stats.CacheHits)
	assert.Equal(t, 1, first.Stats.FilesWritten)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.js")))

	second, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, second.Files, 1)
	assert.True(t, second.Files[0].CacheHit)
	assert.True(t, second.Files[0].Written)
	assert.Equal(t, "const a = 1\n", readFile(t, filepath.Join(dir, "a.js")))

	// Different options miss.
	opts.Transform.RemoveTSComments = true
	third, err := r.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, third.Stats.CacheHits)
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.js": "const a = 1\n"})

	result, err := newRunner().Run(context.Background(), runner.Options{Input: ".", WorkingDir: dir})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, runner.Stats{}, result.Stats)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": "const a: number = 1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner().Run(ctx, runner.Options{Input: ".", WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestModeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "transform", runner.ModeTransform.String())
	assert.Equal(t, "magic", runner.ModeMagic.String())
}
