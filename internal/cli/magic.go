package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/detype/pkg/config"
	"github.com/yaklabco/detype/pkg/runner"
)

func newMagicCommand(info BuildInfo) *cobra.Command {
	var cfg config.Config
	flags := &transformFlags{}

	cmd := &cobra.Command{
		Use:   "magic [flags] <input> [output]",
		Short: "Swap @detype directive blocks for their substitutes and keep the types",
		Long: `Replace every @detype directive block with its commented substitute,
uncommented, without removing any types. Use this to publish TypeScript
sources with the simplified code the directives describe.

Without an output, files are rewritten in place. A directory output mirrors
the input tree and keeps every file name.`,
		Example: `  detype magic src/a.ts              # Rewrite src/a.ts in place
  detype magic src/ published/       # Copy the tree without directive blocks`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, args, info, runner.ModeMagic, &cfg, flags)
		},
	}

	addTransformFlags(cmd, &cfg, flags)

	return cmd
}
