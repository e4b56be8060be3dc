package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/detype/internal/configloader"
	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/cache"
	"github.com/yaklabco/detype/pkg/config"
	"github.com/yaklabco/detype/pkg/detype"
	"github.com/yaklabco/detype/pkg/format"
	"github.com/yaklabco/detype/pkg/reporter"
	"github.com/yaklabco/detype/pkg/runner"
)

// cacheApp names the cache directory under the user cache root.
const cacheApp = "detype"

type transformFlags struct {
	format           string
	formatterOptions []string
	removeTSComments bool
	markdown         bool
	followSymlinks   bool
	cache            bool
	noContext        bool
	compact          bool
	verbose          bool
}

const transformLongDescription = `Remove TypeScript types from .ts, .tsx and .vue files.

The input is a file or a directory. A directory is walked recursively and
every typed file below it is transformed into the output directory, mirroring
the tree: .ts becomes .js, .tsx becomes .jsx, .mts and .cts become .mjs and
.cjs, and .vue files keep their name. Declaration files (.d.ts) and
node_modules are skipped. Without an output, results are written next to
their inputs.

Blank lines and comments are kept, the result is formatted with the chosen
formatter, and @detype directive blocks are resolved.`

const transformExamples = `  detype src/a.ts                    # Write src/a.js
  detype src/ dist/                  # Transform a whole tree into dist/
  detype --formatter prettier src/   # Format output with prettier
  detype --dry-run --diff src/       # Show what would change
  detype --format json src/ out/     # Machine-readable outcome
  detype -m src/                     # Only remove @detype directive blocks`

// addTransformFlags registers the flags shared by the root command and the
// magic subcommand. Flags that map onto a configuration key are bound to cfg
// with zero defaults so that only flags given on the command line override
// configuration files.
func addTransformFlags(cmd *cobra.Command, cfg *config.Config, flags *transformFlags) {
	cmd.Flags().StringVar(&cfg.Formatter, "formatter", "",
		"output formatter: "+strings.Join(format.Names(), ", ")+" (default basic)")
	cmd.Flags().StringVar(&cfg.PrettierPath, "prettier-path", "", "prettier executable (default prettier on PATH)")
	cmd.Flags().StringArrayVar(&flags.formatterOptions, "formatter-option", nil,
		"formatter option as key=value, repeatable (e.g. semi=false)")
	cmd.Flags().BoolVar(&flags.removeTSComments, "remove-ts-comments", false,
		"remove @ts-ignore and @ts-expect-error comments")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&cfg.Ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&flags.markdown, "markdown", false, "also transform typed code blocks in Markdown files")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "walk symlinked directories")
	cmd.Flags().BoolVar(&flags.cache, "cache", false, "reuse outputs of unchanged inputs")
	cmd.Flags().StringVar(&cfg.Cache.Dir, "cache-dir", "", "cache directory (default user cache dir)")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "compute outputs without writing them")
	cmd.Flags().BoolVar(&cfg.Diff, "diff", false, "show a diff between each input and its output")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, table, json, diff, summary")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context under syntax errors")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "also list files whose output did not change")

	fs := cmd.Flags()
	setFlagGroup(fs, groupFormatting, "formatter", "prettier-path", "formatter-option", "remove-ts-comments")
	setFlagGroup(fs, groupFiles, "ignore", "markdown", "follow-symlinks")
	setFlagGroup(fs, groupRun, "jobs", "dry-run")
	setFlagGroup(fs, groupOutput, "diff", "format", "no-context", "compact", "verbose")
	setFlagGroup(fs, groupCache, "cache", "cache-dir")
}

// cliConfig completes cfg with the flags that need to know whether they
// were given: booleans that may override a configuration file with false.
func cliConfig(cmd *cobra.Command, cfg *config.Config, flags *transformFlags) (*config.Config, error) {
	out := cfg.Clone()

	changedBool := func(name string, value bool) *bool {
		if cmd.Flags().Changed(name) {
			return config.Bool(value)
		}
		return nil
	}
	out.RemoveTSComments = changedBool("remove-ts-comments", flags.removeTSComments)
	out.Markdown = changedBool("markdown", flags.markdown)
	out.FollowSymlinks = changedBool("follow-symlinks", flags.followSymlinks)
	out.Cache.Enabled = changedBool("cache", flags.cache)

	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return nil, fmt.Errorf("get color flag: %w", err)
		}
		out.Color = config.ColorMode(color)
	}

	opts, err := parseFormatterOptions(flags.formatterOptions)
	if err != nil {
		return nil, err
	}
	out.FormatterOptions = opts

	return out, nil
}

// parseFormatterOptions turns key=value pairs into formatter options. Values
// are read as YAML scalars, so "semi=false" yields a bool and "tabWidth=4"
// an int.
func parseFormatterOptions(pairs []string) (format.Options, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(format.Options, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid formatter option %q: want key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid formatter option %q: %w", pair, err)
		}
		if value == nil {
			value = raw
		}
		opts[key] = value
	}
	return opts, nil
}

func runTransform(cmd *cobra.Command, args []string, info BuildInfo, mode runner.Mode, cfg *config.Config, flags *transformFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	outputFormat, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return withCode(ExitInvalidUsage, fmt.Errorf("invalid format: %w", err))
	}

	cliCfg, err := cliConfig(cmd, cfg, flags)
	if err != nil {
		return withCode(ExitInvalidUsage, err)
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return withCode(ExitConfigError, errors.Join(errors.New("failed to load configuration"), err))
	}

	finalCfg := loadResult.Config
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}
	if finalCfg.Magic {
		mode = runner.ModeMagic
	}

	formatter, err := format.New(finalCfg.Formatter, finalCfg.PrettierPath)
	if err != nil {
		return withCode(ExitConfigError, err)
	}

	transformRunner := runner.New(detype.New(formatter))
	if config.Enabled(finalCfg.Cache.Enabled) {
		c, err := openCache(finalCfg.Cache.Dir)
		if err != nil {
			logger.Warn("running without cache", logging.FieldError, err)
		} else {
			transformRunner.Cache = c
			transformRunner.CacheSalt = strings.Join([]string{info.Version, finalCfg.Formatter, finalCfg.PrettierPath}, "\x00")
		}
	}

	runOpts := runner.Options{
		Input:          args[0],
		WorkingDir:     workDir,
		ExcludeGlobs:   finalCfg.Ignore,
		Markdown:       config.Enabled(finalCfg.Markdown),
		FollowSymlinks: config.Enabled(finalCfg.FollowSymlinks),
		Jobs:           finalCfg.Jobs,
		Mode:           mode,
		DryRun:         finalCfg.DryRun,
		Diff:           finalCfg.Diff || outputFormat == reporter.FormatDiff,
		Transform: detype.TransformOptions{
			RemoveTSComments: config.Enabled(finalCfg.RemoveTSComments),
			FormatterOptions: finalCfg.FormatterOptions,
		},
	}
	if len(args) > 1 {
		runOpts.Output = args[1]
	}

	logger.Debug("starting run",
		logging.FieldInput, runOpts.Input,
		logging.FieldOutput, runOpts.Output,
		logging.FieldFormatter, finalCfg.Formatter,
		logging.FieldJobs, runOpts.Jobs,
		"mode", mode.String(),
	)

	result, err := transformRunner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("run failed"), err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      outputFormat,
		Color:       string(finalCfg.Color),
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		DryRun:      finalCfg.DryRun,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return withCode(ExitIOError, fmt.Errorf("report results: %w", err))
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrTransformFailed
	}
	return nil
}

func openCache(dir string) (*cache.Cache, error) {
	if dir != "" {
		return cache.OpenDir(dir)
	}
	return cache.Open(cacheApp)
}
