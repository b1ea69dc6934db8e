package e2e

// Package e2e - CLI execution integration
// This file builds and runs the real encephalon binary so tests exercise the
// full cobra wiring, logging setup and exit codes instead of calling command
// functions in-process.

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// cliMutex ensures only one CLI execution at a time, runCLI mutates the
// process environment and stdout/stderr around each run
var cliMutex sync.Mutex

var (
	resolveOnce  sync.Once
	resolvedPath string

	buildOnce sync.Once
	builtPath string
	buildErr  error
)

func init() {
	// Proactively build the test binary once at package init when no explicit
	// binary is provided. This avoids per-test timeouts where short-lived
	// commands (like --help) include build time.
	if os.Getenv("ENCEPHALON_BINARY") == "" {
		_, _ = builtBinary()
	}
}

// builtBinary compiles the CLI once per test process into a temp directory
// and returns the binary path. Subsequent calls reuse the first result.
func builtBinary() (string, error) {
	buildOnce.Do(func() {
		wd, err := os.Getwd()
		if err != nil {
			buildErr = fmt.Errorf("failed to get working directory: %w", err)
			return
		}
		// main.go lives at the module root, two levels above tests/e2e
		moduleDir := filepath.Clean(filepath.Join(wd, "..", ".."))

		tmpDir, err := os.MkdirTemp("", "encephalon-e2e-")
		if err != nil {
			buildErr = fmt.Errorf("failed to create temp dir: %w", err)
			return
		}

		out := filepath.Join(tmpDir, "encephalon")
		if runtime.GOOS == "windows" {
			out += ".exe"
		}

		if err := buildBinary(moduleDir, out); err != nil {
			buildErr = fmt.Errorf("failed to build encephalon test binary: %w", err)
			return
		}
		builtPath = out
	})

	if buildErr != nil {
		return "", buildErr
	}
	return builtPath, nil
}

func buildBinary(moduleDir, outputPath string) error {
	cmd := exec.Command("go", "build", "-o", outputPath, ".")
	cmd.Dir = moduleDir
	cmd.Env = os.Environ()
	// stdout/stderr stay unwired to keep init() quiet, a failed build
	// surfaces through the returned error on first execution
	return cmd.Run()
}

// preBuiltBinary resolves the ENCEPHALON_BINARY override to an absolute path
// so tests keep working regardless of their working directory.
func preBuiltBinary() string {
	resolveOnce.Do(func() {
		given := os.Getenv("ENCEPHALON_BINARY")
		resolvedPath = given

		if filepath.IsAbs(given) {
			return
		}

		candidates := []string{given, filepath.Join("..", "..", given)}
		if runtime.GOOS == "windows" {
			candidates = append(candidates, given+".exe", filepath.Join("..", "..", given+".exe"))
		}

		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				if abs, err := filepath.Abs(candidate); err == nil {
					resolvedPath = abs
					return
				}
			}
		}

		if abs, err := filepath.Abs(given); err == nil {
			resolvedPath = abs
		}
	})

	return resolvedPath
}

// executeCLI runs the encephalon binary as a separate process so cobra and
// zerolog globals never leak between tests. The current os.Stdout/os.Stderr
// are wired in at call time, runCLI points them at capture pipes first.
func executeCLI(ctx context.Context, args []string) error {
	var binary string
	if os.Getenv("ENCEPHALON_BINARY") != "" {
		binary = preBuiltBinary()
	} else {
		built, err := builtBinary()
		if err != nil {
			return err
		}
		binary = built
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	return cmd.Run()
}

// useLiveExecution controls whether runCLI executes the real binary
const useLiveExecution = true
