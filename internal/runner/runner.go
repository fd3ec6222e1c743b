package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/harrison/artcheck/internal/capture"
	"github.com/harrison/artcheck/internal/models"
	"github.com/harrison/artcheck/internal/provision"
	"github.com/harrison/artcheck/internal/report"
	"github.com/harrison/artcheck/internal/verify"
)

// TestCaseRunner drives one test case end to end: provision, invoke,
// capture, verify. It owns the single capture handle, so it must not be
// shared across concurrent runs; the harness executes cases one at a time.
type TestCaseRunner struct {
	Provisioner *provision.Provisioner
	Command     CommandRunner
	Parser      *report.Parser

	// RepoRoot is the fixed shared repository root reference files are
	// resolved against.
	RepoRoot string

	// Repos is the ordered list of repository root URIs handed to the
	// downloader.
	Repos []string

	// SDKRoot is the fake platform-SDK root handed to the downloader.
	SDKRoot string

	cap *capture.Capture
}

// New creates a TestCaseRunner with a fresh capture handle.
func New(prov *provision.Provisioner, cmd CommandRunner, parser *report.Parser, repoRoot, sdkRoot string, repos []string) *TestCaseRunner {
	return &TestCaseRunner{
		Provisioner: prov,
		Command:     cmd,
		Parser:      parser,
		RepoRoot:    repoRoot,
		Repos:       repos,
		SDKRoot:     sdkRoot,
		cap:         capture.New(),
	}
}

// Run executes every iteration of the test case against the same working
// directory and verifies each one. It returns one RunResult per completed
// iteration; on a failing iteration it stops, returning the results so far
// together with an error attributed to that iteration.
func (r *TestCaseRunner) Run(ctx context.Context, tc *models.TestCase) ([]models.RunResult, error) {
	if err := tc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid test case %s: %w", tc.Name, err)
	}

	workDir, err := r.Provisioner.ProvisionTestRoot(tc.Name)
	if err != nil {
		return nil, err
	}

	// The working directory never changes between iterations, so the
	// resolved expectations are identical for every iteration.
	artifacts := tc.Artifacts.Resolve(workDir, r.RepoRoot)
	outputs := make([]string, len(artifacts))
	for i, a := range artifacts {
		outputs[i] = a.Output
	}

	results := make([]models.RunResult, 0, tc.IterationCount())
	for i := 1; i <= tc.IterationCount(); i++ {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		res, err := r.runIteration(ctx, tc, i, workDir, artifacts, outputs)
		results = append(results, res)
		if err != nil {
			// A failure stops further iterations of this case.
			return results, fmt.Errorf("iteration %s: %w", res.IterationName, err)
		}
	}
	return results, nil
}

func (r *TestCaseRunner) runIteration(ctx context.Context, tc *models.TestCase, iteration int, workDir string, artifacts []models.ResolvedArtifact, outputs []string) (models.RunResult, error) {
	inv := Invocation{
		Name:      tc.IterationName(iteration),
		Tool:      r.Provisioner.ScriptPath(),
		WorkDir:   workDir,
		SDKRoot:   r.SDKRoot,
		Repos:     r.Repos,
		Packages:  tc.Packages,
		TargetDir: workDir,
	}

	res := models.RunResult{
		IterationName: inv.Name,
		Iteration:     iteration,
		Outputs:       outputs,
	}

	start := time.Now()
	exitCode, err := r.Command.Run(ctx, inv, r.cap)
	res.Duration = time.Since(start)
	res.Output = r.cap.Read()
	if err != nil {
		return res, err
	}
	if exitCode != 0 {
		return res, toolFailure(inv, exitCode, res.Output)
	}

	if err := verify.Existence(artifacts, res.Output); err != nil {
		return res, err
	}
	res.ExistencePassed = true

	if err := verify.Content(artifacts, res.Output); err != nil {
		return res, err
	}
	res.ContentPassed = true

	if err := verify.Report(r.Parser, res.Output, tc.ExpectedReport); err != nil {
		return res, err
	}
	res.ReportPassed = true

	return res, nil
}
