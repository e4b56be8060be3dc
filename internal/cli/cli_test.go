package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/detype/internal/cli"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test",
		Commit:  "test",
		Date:    "test",
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)

	assert.Equal(t, "detype", cmd.Name())
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"magic", "init", "cache", "version"} {
		subCmd, _, err := cmd.Find([]string{name})
		if !assert.NoError(t, err, "subcommand %q", name) {
			continue
		}
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestTransformFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	magicCmd, _, err := cmd.Find([]string{"magic"})
	require.NoError(t, err)

	expectedFlags := []string{
		"formatter",
		"prettier-path",
		"formatter-option",
		"remove-ts-comments",
		"jobs",
		"ignore",
		"markdown",
		"follow-symlinks",
		"cache",
		"cache-dir",
		"dry-run",
		"diff",
		"format",
		"no-context",
		"compact",
		"verbose",
	}

	for _, flagName := range expectedFlags {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "root flag %q", flagName)
		assert.NotNil(t, magicCmd.Flags().Lookup(flagName), "magic flag %q", flagName)
	}

	magic := cmd.Flags().Lookup("magic")
	require.NotNil(t, magic)
	assert.Equal(t, "m", magic.Shorthand)

	formatFlag := cmd.Flags().Lookup("format")
	assert.Equal(t, "text", formatFlag.DefValue)
	assert.Contains(t, formatFlag.Usage, "summary")
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, flagName := range []string{"debug", "config", "color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flagName), "global flag %q", flagName)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	})
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1.2.3")
	assert.Contains(t, out.String(), "abc123")
}

func TestRootCommandArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	require.NoError(t, cmd.Args(cmd, []string{"src"}))
	require.NoError(t, cmd.Args(cmd, []string{"src", "dist"}))

	err := cmd.Args(cmd, nil)
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))

	err = cmd.Args(cmd, []string{"a", "b", "c"})
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
}

func TestHelpListsEnvironment(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	cmd.SetArgs([]string{"--help"})

	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Environment:")
	assert.Contains(t, out.String(), "DETYPE_FORMATTER")
}

func TestHelpGroupsTransformFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "root",
			args: []string{"--help"},
			want: []string{"Formatting Flags:", "Files Flags:", "Run Flags:", "Output Flags:", "Cache Flags:"},
		},
		{
			name: "magic",
			args: []string{"magic", "--help"},
			want: []string{"Formatting Flags:", "Output Flags:", "Global Flags:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(testInfo())
			cmd.SetArgs(tt.args)

			var out bytes.Buffer
			cmd.SetOut(&out)

			require.NoError(t, cmd.Execute())
			text := out.String()
			last := -1
			for _, heading := range tt.want {
				idx := strings.Index(text, heading)
				require.GreaterOrEqual(t, idx, 0, "missing %q in:\n%s", heading, text)
				assert.Greater(t, idx, last, "%q out of order", heading)
				last = idx
			}
			assert.Regexp(t, `--cache-dir string\s+cache directory`, text)
			assert.Contains(t, text, "(default text)")
		})
	}
}
