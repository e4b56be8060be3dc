//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"fz":  Test.Fuzz,
	"gd":  Test.Golden,
	"fmt": Lint.Fmt,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

// The tree-sitter grammars are C code, so every build and test needs cgo.
var cgoEnv = map[string]string{"CGO_ENABLED": "1"}

// Build compiles bin/detype with version info when a source changed.
func Build() error {
	st.Deps(CI.Cgo)
	rebuild, err := target.Dir("bin/detype", "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println("bin/detype is up to date")
		return nil
	}
	fmt.Println("Building detype...")
	return sh.RunWithV(cgoEnv, "go", "build", "-ldflags", ldflags(), "-o", "bin/detype", "./cmd/detype")
}

// Check formats, lints and tests.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build artifacts.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install installs detype to $GOBIN or $GOPATH/bin.
func Install() error {
	st.Deps(CI.Cgo)
	fmt.Println("Installing detype...")
	return sh.RunWithV(cgoEnv, "go", "install", "-ldflags", ldflags(), "./cmd/detype")
}

// Default runs all tests with race detection and coverage.
func (Test) Default() error {
	st.Deps(CI.Cgo)
	fmt.Println("Running tests...")
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	return sh.RunWithV(cgoEnv, "go",
		"tool", "gotestsum",
		"-f", "pkgname-and-test-fails",
		"--",
		"-race",
		"-p", nCores,
		"./...",
		"-coverprofile=coverage.out",
		"-covermode=atomic",
	)
}

// Golden rewrites the expected outputs under pkg/detype/testdata from the
// current transform. Review the diff before committing.
func (Test) Golden() error {
	fmt.Println("Updating golden files...")
	if err := sh.RunWithV(cgoEnv, "go", "test", "./pkg/detype", "-run", "^TestFixtures$", "-update"); err != nil {
		return err
	}
	return sh.RunV("git", "status", "--short", "pkg/detype/testdata")
}

// Fuzz runs each fuzz target for STAVE_FUZZ_TIME (default 30s).
func (Test) Fuzz() error {
	fuzzTime := cmp.Or(os.Getenv("STAVE_FUZZ_TIME"), "30s")
	targets := []struct{ pkg, name string }{
		{"./pkg/blankline", "FuzzRoundTrip"},
		{"./pkg/splice", "FuzzApplyIdentity"},
		{"./pkg/fsutil", "FuzzWriteAtomicReadText"},
	}
	for _, tgt := range targets {
		fmt.Printf("Fuzzing %s %s...\n", tgt.pkg, tgt.name)
		if err := sh.RunWithV(cgoEnv, "go", "test", "-run=^$", "-fuzz=^"+tgt.name+"$", "-fuzztime="+fuzzTime, tgt.pkg); err != nil {
			return fmt.Errorf("fuzz %s: %w", tgt.name, err)
		}
	}
	return nil
}

// Smoke runs the built binary over the fixtures in both modes.
func (Test) Smoke() error {
	st.Deps(Build)
	out, err := os.MkdirTemp("", "detype-smoke-")
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(out)

	if err := sh.RunV("bin/detype", "--format", "summary", "pkg/detype/testdata", filepath.Join(out, "js")); err != nil {
		return fmt.Errorf("transform fixtures: %w", err)
	}
	if err := sh.RunV("bin/detype", "magic", "--format", "summary", "pkg/detype/testdata", filepath.Join(out, "ts")); err != nil {
		return fmt.Errorf("remove directives: %w", err)
	}
	fmt.Println("✓ Smoke run OK")
	return nil
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	fmt.Println("Running linters...")
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", "cmd", "internal", "pkg", "stavefile.go")
}

// FmtCheck fails when a Go file is not gofmt-clean.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg", "stavefile.go")
	if err != nil {
		return fmt.Errorf("gofmt check failed: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Gate runs the checks a pull request must pass.
func (CI) Gate() error {
	st.SerialDeps(
		CI.Cgo,
		Lint.FmtCheck,
		CI.Lint,
		Test.Default,
		Test.Smoke,
		CI.ModTidy,
	)
	fmt.Println("\n✓ All CI gate checks passed!")
	return nil
}

// Lint runs golangci-lint without auto-fix.
func (CI) Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Cgo fails early when no C compiler is available for the tree-sitter
// grammars.
func (CI) Cgo() error {
	cc, err := sh.Output("go", "env", "CC")
	if err != nil {
		return fmt.Errorf("go env: %w", err)
	}
	compiler := strings.Fields(cc)
	if len(compiler) == 0 {
		return errors.New("no C compiler configured (go env CC is empty)")
	}
	if _, err := exec.LookPath(compiler[0]); err != nil {
		return fmt.Errorf("C compiler %q not found: %w", compiler[0], err)
	}
	return nil
}

// ModTidy checks that go.mod and go.sum are tidy.
func (CI) ModTidy() error {
	fmt.Println("Checking go.mod/go.sum are tidy...")
	return sh.RunV("go", "mod", "tidy", "-diff")
}

// Default runs the Go benchmarks of the transform packages.
func (Bench) Default() error {
	return sh.RunWithV(cgoEnv, "go", "test", "-run=^$", "-bench=.", "-benchmem", "./pkg/...")
}

// Prettier times the fixtures through the prettier formatter. It needs
// prettier on PATH.
func (Bench) Prettier() error {
	st.Deps(Build)
	if err := exec.Command("prettier", "--version").Run(); err != nil { //nolint:gosec // args are constant
		return errors.New("prettier not found; install with: npm install -g prettier")
	}
	out, err := os.MkdirTemp("", "detype-bench-")
	if err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	defer os.RemoveAll(out)

	start := time.Now()
	if err := sh.RunV("bin/detype", "--formatter", "prettier", "--format", "summary", "pkg/detype/testdata", out); err != nil {
		return fmt.Errorf("transform fixtures: %w", err)
	}
	fmt.Printf("Finished in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// ldflags returns the linker flags for version injection.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}

func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}
