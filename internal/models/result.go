package models

import "time"

// RunResult captures the outcome of a single downloader iteration. It is
// transient: the suite runner reads it for reporting and history, then
// discards it.
type RunResult struct {
	IterationName string // Resolved invocation name for this iteration
	Iteration     int    // 1-based iteration number
	Output        string // Combined stdout/stderr text from the downloader

	// Outputs lists the absolute paths of the expected output files.
	Outputs []string

	// ExistencePassed, ContentPassed and ReportPassed record the three
	// verification steps. A skipped step counts as passed.
	ExistencePassed bool
	ContentPassed   bool
	ReportPassed    bool

	// Duration is how long the downloader ran, excluding verification.
	Duration time.Duration
}

// Passed reports whether all verification steps passed.
func (r *RunResult) Passed() bool {
	return r.ExistencePassed && r.ContentPassed && r.ReportPassed
}

// CaseResult is the aggregate outcome of one test case across all of its
// iterations.
type CaseResult struct {
	Case       TestCase
	Iterations []RunResult
	Err        error // nil when the case passed
	Duration   time.Duration
}

// Passed reports whether the case completed all iterations without failure.
func (c *CaseResult) Passed() bool {
	return c.Err == nil
}

// SuiteResult aggregates the per-case outcomes of one harness run.
type SuiteResult struct {
	TotalCases int
	Passed     int
	Failed     int
	Duration   time.Duration
	Cases      []CaseResult
}
