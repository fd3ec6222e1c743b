package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunResult_Passed(t *testing.T) {
	tests := []struct {
		name      string
		existence bool
		content   bool
		report    bool
		want      bool
	}{
		{"all steps passed", true, true, true, true},
		{"existence failed", false, true, true, false},
		{"content failed", true, false, true, false},
		{"report failed", true, true, false, false},
		{"nothing ran", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RunResult{
				ExistencePassed: tt.existence,
				ContentPassed:   tt.content,
				ReportPassed:    tt.report,
			}
			assert.Equal(t, tt.want, r.Passed())
		})
	}
}

func TestCaseResult_Passed(t *testing.T) {
	passed := CaseResult{Case: TestCase{Name: "single-jar"}}
	assert.True(t, passed.Passed())

	failed := CaseResult{
		Case: TestCase{Name: "single-jar"},
		Err:  errors.New("iteration single-jar: missing expected file"),
	}
	assert.False(t, failed.Passed())
}
