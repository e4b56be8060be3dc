package cli

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/yaklabco/detype/internal/configloader"
	"github.com/yaklabco/detype/internal/logging"
	"github.com/yaklabco/detype/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new detype configuration file",
		Long: `Create a new .detype.yml configuration file in the current directory.
It is picked up by every detype run below this directory, up to the
repository root.`,
		Example: `  detype init                       # Create a minimal .detype.yml
  detype init --full                # Document every key
  detype init --format json         # Create .detype.json instead
  detype init --output custom.yml   # Write to a custom file path`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with every key documented")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .detype.yml or .detype.json)")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	// Validate format
	if flags.format != "yaml" && flags.format != "json" {
		return withCode(ExitInvalidUsage, fmt.Errorf("invalid format %q: must be yaml or json", flags.format))
	}

	// Determine output path
	outputPath := flags.output
	if outputPath == "" {
		if flags.format == "json" {
			outputPath = ".detype.json"
		} else {
			outputPath = ".detype.yml"
		}
	}

	// Make path absolute
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return withCode(ExitInvalidUsage, fmt.Errorf("file %q already exists; use --force to overwrite", outputPath))
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	// Generate template
	opts := config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	}

	content, err := config.GenerateTemplate(opts)
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	// Write file
	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return withCode(ExitIOError, fmt.Errorf("write file: %w", err))
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)

	if !flags.full {
		logger.Info("run 'detype init --full' to see every available key")
	}
	logger.Info("settings can also come from the environment", "variables", slices.Sorted(maps.Keys(configloader.ListEnvVars())))

	return nil
}
