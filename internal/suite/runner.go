package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/artcheck/internal/logger"
	"github.com/harrison/artcheck/internal/models"
	"github.com/harrison/artcheck/internal/runner"
)

// ErrSuiteFailed indicates at least one test case in the batch failed.
var ErrSuiteFailed = errors.New("suite failed")

// Recorder persists per-case outcomes. The history store implements it;
// a nil Recorder disables recording.
type Recorder interface {
	RecordCase(suiteName string, result models.CaseResult) error
}

// Runner executes a suite's cases one at a time, each to full completion,
// and reports every case's outcome rather than stopping at the first
// failure.
type Runner struct {
	Cases    *runner.TestCaseRunner
	Logger   *logger.ConsoleLogger
	Recorder Recorder
}

// RunSuite runs every case sequentially and returns the aggregate result.
// The returned error is ErrSuiteFailed (naming the failed cases) when any
// case failed, or a context error if the batch was cancelled between
// cases; individual case failures never abort the batch.
func (r *Runner) RunSuite(ctx context.Context, s *Suite) (*models.SuiteResult, error) {
	result := &models.SuiteResult{TotalCases: len(s.Cases)}
	start := time.Now()

	var failed []string
	for i := range s.Cases {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		tc := s.Cases[i]
		r.Logger.LogCaseStart(tc)

		caseStart := time.Now()
		iterations, err := r.Cases.Run(ctx, &tc)
		caseResult := models.CaseResult{
			Case:       tc,
			Iterations: iterations,
			Err:        err,
			Duration:   time.Since(caseStart),
		}

		for _, it := range iterations {
			r.Logger.LogIteration(it)
		}
		r.Logger.LogCaseResult(caseResult)

		if r.Recorder != nil {
			if recErr := r.Recorder.RecordCase(s.Name, caseResult); recErr != nil {
				r.Logger.LogWarn(fmt.Sprintf("failed to record history for %s: %v", tc.Name, recErr))
			}
		}

		if err != nil {
			result.Failed++
			failed = append(failed, tc.Name)
		} else {
			result.Passed++
		}
		result.Cases = append(result.Cases, caseResult)
	}

	result.Duration = time.Since(start)
	r.Logger.LogSummary(*result)

	if len(failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d cases failed (%s)",
			ErrSuiteFailed, len(failed), len(s.Cases), strings.Join(failed, ", "))
	}
	return result, nil
}
