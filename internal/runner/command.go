// Package runner executes test cases: it provisions the working directory,
// invokes the downloader subprocess with captured streams, and runs the
// three verification checks after each iteration.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/harrison/artcheck/internal/capture"
	"github.com/harrison/artcheck/internal/models"
)

// ErrToolExecution indicates the downloader failed to start or exited
// abnormally. The wrapped message carries the captured output verbatim.
var ErrToolExecution = errors.New("tool execution failed")

// Invocation is one fully resolved downloader run: the pinned tool, the
// test case's working directory, and the fixed parameter set the tool's
// contract requires.
type Invocation struct {
	// Name is the per-iteration invocation name, for logs and diagnostics.
	Name string

	// Tool is the absolute path of the pinned invocation script.
	Tool string

	// WorkDir is the test case working directory the process runs in.
	WorkDir string

	// SDKRoot is the fake platform-SDK root location.
	SDKRoot string

	// Repos is the ordered list of artifact-repository root URIs.
	Repos []string

	// Packages is the semicolon-delimited constraint string, passed
	// through verbatim.
	Packages models.PackageRequest

	// TargetDir is where the downloader writes output files.
	TargetDir string
}

// Args builds the downloader's command-line argument list.
func (inv Invocation) Args() []string {
	args := []string{
		"--sdk-root", inv.SDKRoot,
		"--target-dir", inv.TargetDir,
		"--packages", string(inv.Packages),
	}
	for _, repo := range inv.Repos {
		args = append(args, "--repo", repo)
	}
	return args
}

// CommandRunner runs an external process with a working directory and
// arguments, streaming its combined output into the given capture and
// returning its exit status. Abstracting the spawn primitive keeps the
// test-case runner testable without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, inv Invocation, cap *capture.Capture) (int, error)
}

// ExecRunner is the os/exec-backed CommandRunner. Execution is synchronous
// and unbounded; a hung downloader is expected to be limited by the outer
// execution environment, not here.
type ExecRunner struct{}

// Run executes the invocation to completion with the strict
// install-execute-uninstall ordering the capture requires.
func (ExecRunner) Run(ctx context.Context, inv Invocation, cap *capture.Capture) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args()...)
	cmd.Dir = inv.WorkDir

	if err := cap.Install(cmd); err != nil {
		return -1, fmt.Errorf("%w: %v", ErrToolExecution, err)
	}
	runErr := cmd.Run()
	if err := cap.Uninstall(cmd); err != nil {
		return -1, fmt.Errorf("%w: %v", ErrToolExecution, err)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("%w: failed to start %s: %v", ErrToolExecution, inv.Tool, runErr)
	}
	return 0, nil
}

// toolFailure formats a non-zero exit as an execution error with the
// captured text attached.
func toolFailure(inv Invocation, exitCode int, output string) error {
	msg := fmt.Sprintf("%s: %s exited with status %d", inv.Name, inv.Tool, exitCode)
	if output != "" {
		msg += "\nOutput:\n" + strings.TrimSpace(output)
	}
	return fmt.Errorf("%w: %s", ErrToolExecution, msg)
}
