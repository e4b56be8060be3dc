package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/detype/internal/configloader"
	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/cache"
)

func newCacheCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the output cache",
		Long: `The output cache holds transformed files keyed by their input, options
and detype version. It is used when --cache is given or cache.enabled is set.`,
		Example: `  detype cache dir                       # Print where cached outputs live
  detype cache clear --cache-dir .cache  # Empty a project-local cache`,
	}
	cmd.PersistentFlags().StringVar(&dir, "cache-dir", "", "cache directory (default from config or user cache dir)")

	cmd.AddCommand(&cobra.Command{
		Use:   "dir",
		Short: "Print the cache directory",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := resolveCache(cmd, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached output",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := resolveCache(cmd, dir)
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return withCode(ExitIOError, err)
			}
			logging.NewInteractive().Info("cache cleared", logging.FieldPath, c.Dir())
			return nil
		},
	})

	return cmd
}

// resolveCache opens the cache named by dir, or by the loaded configuration
// when dir is empty.
func resolveCache(cmd *cobra.Command, dir string) (*cache.Cache, error) {
	if dir == "" {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		workDir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("get config flag: %w", err)
		}
		loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
			WorkingDir:   workDir,
			ExplicitPath: configPath,
		})
		if err != nil {
			return nil, withCode(ExitConfigError, errors.Join(errors.New("failed to load configuration"), err))
		}
		dir = loadResult.Config.Cache.Dir
	}

	c, err := openCache(dir)
	if err != nil {
		return nil, withCode(ExitIOError, err)
	}
	return c, nil
}
