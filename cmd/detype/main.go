// Package main is the entry point for the detype CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/detype/internal/cli"
	"github.com/yaklabco/detype/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// ErrTransformFailed only carries the exit code; failures were reported already.
		if !errors.Is(err, cli.ErrTransformFailed) {
			logger := logging.Default()
			logger.Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}
