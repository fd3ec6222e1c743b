// Package verify implements the three post-run checks for a downloader
// iteration: expected files exist, their content matches designated
// reference files, and the emitted report sections equal the expected
// sequence. Each check batches every offending item into one failure
// rather than stopping at the first, and every failure carries the full
// captured output for diagnosis.
package verify

import (
	"fmt"
	"os"
	"strings"

	"github.com/harrison/artcheck/internal/checksum"
	"github.com/harrison/artcheck/internal/models"
	"github.com/harrison/artcheck/internal/report"
)

// Check identifies which verification step failed.
type Check string

const (
	CheckExistence Check = "existence"
	CheckContent   Check = "content"
	CheckReport    Check = "report"
)

// Error is a failed verification step with its batched detail lines and
// the downloader's captured output.
type Error struct {
	Check   Check
	Details []string
	Output  string
}

// Error formats the failure as a multi-line diagnostic report.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s verification failed:\n", e.Check)
	for _, d := range e.Details {
		fmt.Fprintf(&sb, "  %s\n", d)
	}
	if e.Output != "" {
		sb.WriteString("\nCaptured output:\n")
		sb.WriteString(e.Output)
	}
	return sb.String()
}

// Existence checks that every resolved output file exists. All missing
// files are collected into one failure.
func Existence(artifacts []models.ResolvedArtifact, output string) error {
	var missing []string
	for _, a := range artifacts {
		if _, err := os.Stat(a.Output); err != nil {
			missing = append(missing, fmt.Sprintf("missing expected file: %s", a.Output))
		}
	}
	if len(missing) > 0 {
		return &Error{Check: CheckExistence, Details: missing, Output: output}
	}
	return nil
}

// Content checks every artifact that designates a reference file for
// checksum-identical content. Entries without a reference are existence
// only and never fail here. All mismatches and read errors are batched.
func Content(artifacts []models.ResolvedArtifact, output string) error {
	var mismatches []string
	for _, a := range artifacts {
		if a.Reference == "" {
			continue
		}
		refDigest, err := checksum.Digest(a.Reference)
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("unreadable reference %s: %v", a.Reference, err))
			continue
		}
		outDigest, err := checksum.Digest(a.Output)
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("unreadable output %s: %v", a.Output, err))
			continue
		}
		if refDigest != outDigest {
			mismatches = append(mismatches, fmt.Sprintf("%s (%s) != %s (%s)",
				a.Reference, refDigest, a.Output, outDigest))
		}
	}
	if len(mismatches) > 0 {
		return &Error{Check: CheckContent, Details: mismatches, Output: output}
	}
	return nil
}

// Report parses the captured output and checks that the recognized
// sections equal the expected ordered sequence exactly: same count, same
// order, same content per section. A nil expected sequence opts out and
// skips the check; an empty non-nil sequence asserts no sections.
func Report(parser *report.Parser, output string, expected []string) error {
	if expected == nil {
		return nil
	}

	actual := parser.ParseSections(output)
	var details []string
	if len(actual) != len(expected) {
		details = append(details, fmt.Sprintf("expected %d report sections, got %d", len(expected), len(actual)))
	}
	for i := 0; i < len(expected) && i < len(actual); i++ {
		if expected[i] != actual[i] {
			details = append(details, fmt.Sprintf("section %d mismatch:\nexpected:\n%s\nactual:\n%s",
				i+1, indent(expected[i]), indent(actual[i])))
		}
	}
	for i := len(actual); i < len(expected); i++ {
		details = append(details, fmt.Sprintf("section %d absent:\nexpected:\n%s", i+1, indent(expected[i])))
	}
	for i := len(expected); i < len(actual); i++ {
		details = append(details, fmt.Sprintf("section %d unexpected:\nactual:\n%s", i+1, indent(actual[i])))
	}

	if len(details) > 0 {
		return &Error{Check: CheckReport, Details: details, Output: output}
	}
	return nil
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}
