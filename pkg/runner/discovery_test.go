package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/pkg/langdetect"
	"github.com/yaklabco/detype/pkg/runner"
)

// writeTree creates files under dir, each with the given content.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// relJobs returns the jobs' inputs and outputs relative to dir, slash separated.
func relJobs(t *testing.T, dir string, jobs []runner.Job) [][2]string {
	t.Helper()
	out := make([][2]string, 0, len(jobs))
	for _, job := range jobs {
		in, err := filepath.Rel(dir, job.Input)
		require.NoError(t, err)
		o, err := filepath.Rel(dir, job.Output)
		require.NoError(t, err)
		out = append(out, [2]string{filepath.ToSlash(in), filepath.ToSlash(o)})
	}
	return out
}

func TestPlan_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": "const a: number = 1\n"})

	jobs, err := runner.Plan(context.Background(), runner.Options{Input: "a.ts", WorkingDir: dir})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, filepath.Join(dir, "a.ts"), jobs[0].Input)
	assert.Equal(t, filepath.Join(dir, "a.js"), jobs[0].Output)
	assert.Equal(t, langdetect.KindTypeScript, jobs[0].Kind)
}

func TestPlan_SingleFileOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/a.tsx":  "",
		"out/.keep":  "",
		"b.mts":      "",
		"types.d.ts": "",
	})

	tests := []struct {
		name   string
		opts   runner.Options
		output string
	}{
		{
			name:   "explicit file",
			opts:   runner.Options{Input: "src/a.tsx", Output: "lib/x.jsx"},
			output: "lib/x.jsx",
		},
		{
			name:   "into existing directory",
			opts:   runner.Options{Input: "src/a.tsx", Output: "out"},
			output: "out/a.jsx",
		},
		{
			name:   "module extension",
			opts:   runner.Options{Input: "b.mts"},
			output: "b.mjs",
		},
		{
			name:   "magic keeps the name",
			opts:   runner.Options{Input: "b.mts", Mode: runner.ModeMagic},
			output: "b.mts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := tt.opts
			opts.WorkingDir = dir
			jobs, err := runner.Plan(context.Background(), opts)
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, filepath.Join(dir, filepath.FromSlash(tt.output)), jobs[0].Output)
		})
	}
}

func TestPlan_DeclarationFileSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"types.d.ts": "declare const a: number\n"})

	jobs, err := runner.Plan(context.Background(), runner.Options{Input: "types.d.ts", WorkingDir: dir})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestPlan_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"src/b.ts":                  "",
		"src/a.vue":                 "",
		"src/nested/c.tsx":          "",
		"src/nested/d.cts":          "",
		"src/types.d.ts":            "",
		"src/plain.js":              "",
		"src/README.md":             "",
		"src/.hidden/e.ts":          "",
		"src/.f.ts":                 "",
		"src/node_modules/pkg/g.ts": "",
		"src/gen/h.ts":              "",
	})

	jobs, err := runner.Plan(context.Background(), runner.Options{
		Input:        "src",
		Output:       "lib",
		WorkingDir:   dir,
		ExcludeGlobs: []string{"gen"},
	})
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"src/a.vue", "lib/a.vue"},
		{"src/b.ts", "lib/b.js"},
		{"src/nested/c.tsx", "lib/nested/c.jsx"},
		{"src/nested/d.cts", "lib/nested/d.cjs"},
	}, relJobs(t, dir, jobs))
}

func TestPlan_DirectoryInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": "", "b/c.ts": ""})

	jobs, err := runner.Plan(context.Background(), runner.Options{Input: ".", WorkingDir: dir})
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"a.ts", "a.js"},
		{"b/c.ts", "b/c.js"},
	}, relJobs(t, dir, jobs))
}

func TestPlan_Markdown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": "", "docs/guide.md": ""})

	tests := []struct {
		name string
		opts runner.Options
		want [][2]string
	}{
		{
			name: "off by default",
			opts: runner.Options{},
			want: [][2]string{{"a.ts", "a.js"}},
		},
		{
			name: "included when enabled",
			opts: runner.Options{Markdown: true},
			want: [][2]string{{"a.ts", "a.js"}, {"docs/guide.md", "docs/guide.md"}},
		},
		{
			name: "never in magic mode",
			opts: runner.Options{Markdown: true, Mode: runner.ModeMagic},
			want: [][2]string{{"a.ts", "a.ts"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := tt.opts
			opts.Input = "."
			opts.WorkingDir = dir
			jobs, err := runner.Plan(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, relJobs(t, dir, jobs))
		})
	}
}

func TestPlan_Symlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"src/a.ts": "", "shared/b.ts": ""})
	if err := os.Symlink(filepath.Join(dir, "shared"), filepath.Join(dir, "src", "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	jobs, err := runner.Plan(context.Background(), runner.Options{Input: "src", WorkingDir: dir})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"src/a.ts", "src/a.js"}}, relJobs(t, dir, jobs))

	jobs, err = runner.Plan(context.Background(), runner.Options{Input: "src", WorkingDir: dir, FollowSymlinks: true})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"src/a.ts", "src/a.js"},
		{"src/link/b.ts", "src/link/b.js"},
	}, relJobs(t, dir, jobs))
}

func TestPlan_NoInput(t *testing.T) {
	t.Parallel()

	_, err := runner.Plan(context.Background(), runner.Options{Input: "missing", WorkingDir: t.TempDir()})
	require.ErrorIs(t, err, runner.ErrNoInput)
}

func TestPlan_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.ts": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Plan(ctx, runner.Options{Input: ".", WorkingDir: dir})
	require.ErrorIs(t, err, context.Canceled)
}
