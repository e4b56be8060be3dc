// Package cli provides the Cobra command structure for detype.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/config"
	"github.com/yaklabco/detype/pkg/runner"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root detype command with all subcommands. The
// root command itself runs the transform.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	var cfg config.Config
	flags := &transformFlags{}

	rootCmd := &cobra.Command{
		Use:     "detype [flags] <input> [output]",
		Short:   "Remove TypeScript types while keeping the code readable",
		Long:    transformLongDescription,
		Example: transformExamples,
		Args:    usageArgs(cobra.RangeArgs(1, 2)),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, args, info, runner.ModeTransform, &cfg, flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(ExitInvalidUsage, err)
	})

	addTransformFlags(rootCmd, &cfg, flags)
	rootCmd.Flags().BoolVarP(&cfg.Magic, "magic", "m", false,
		"only remove @detype directive blocks (same as the magic command)")

	// Add subcommands.
	rootCmd.AddCommand(newMagicCommand(info))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCacheCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return withCode(ExitInvalidUsage, validate(cmd, args))
	}
}
