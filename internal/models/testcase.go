// Package models defines the data structures shared across the artcheck
// harness: test case definitions, artifact expectations, and run results.
package models

import (
	"fmt"
	"path/filepath"
)

// Report section labels emitted by the downloader under test.
const (
	LabelCopied   = "Copied artifacts:"
	LabelMissing  = "Missing artifacts:"
	LabelModified = "Modified artifacts:"
)

// KnownLabels returns the fixed vocabulary of report section labels the
// harness recognizes. Returned as a fresh slice so callers may extend it
// without affecting others.
func KnownLabels() []string {
	return []string{LabelCopied, LabelMissing, LabelModified}
}

// ArtifactEntry maps one expected output file to an optional reference file.
// Both paths are relative: Output is resolved against the test case's
// working directory, Reference against the shared repository root.
// An empty Reference means existence-only (no content check).
type ArtifactEntry struct {
	Output    string `yaml:"output"`
	Reference string `yaml:"reference,omitempty"`
}

// ArtifactSpec is the ordered set of artifact expectations for one test case.
// Output paths must be unique within a spec.
type ArtifactSpec []ArtifactEntry

// Validate checks that every entry has an output path, that no output path
// repeats, and that no path is absolute.
func (s ArtifactSpec) Validate() error {
	seen := make(map[string]bool, len(s))
	for i, e := range s {
		if e.Output == "" {
			return fmt.Errorf("artifacts[%d]: output is required", i)
		}
		if filepath.IsAbs(e.Output) {
			return fmt.Errorf("artifacts[%d]: output must be relative, got %q", i, e.Output)
		}
		if e.Reference != "" && filepath.IsAbs(e.Reference) {
			return fmt.Errorf("artifacts[%d]: reference must be relative, got %q", i, e.Reference)
		}
		if seen[e.Output] {
			return fmt.Errorf("artifacts[%d]: duplicate output path %q", i, e.Output)
		}
		seen[e.Output] = true
	}
	return nil
}

// ResolvedArtifact is an ArtifactEntry with both paths made absolute for one
// run. Reference is empty when the entry carries no content expectation.
type ResolvedArtifact struct {
	Output    string
	Reference string
}

// Resolve maps every entry's relative paths onto the given roots. The
// mapping is rebuilt identically for every iteration since the working
// directory does not change between iterations.
func (s ArtifactSpec) Resolve(workDir, repoRoot string) []ResolvedArtifact {
	resolved := make([]ResolvedArtifact, 0, len(s))
	for _, e := range s {
		ra := ResolvedArtifact{Output: filepath.Join(workDir, e.Output)}
		if e.Reference != "" {
			ra.Reference = filepath.Join(repoRoot, e.Reference)
		}
		resolved = append(resolved, ra)
	}
	return resolved
}

// PackageRequest is an opaque semicolon-delimited string of coordinate and
// version constraints. Its format is owned by the downloader; the harness
// only passes it through.
type PackageRequest string

// TestCase is one declarative acceptance test: run the downloader with a
// package request, then verify files on disk and the emitted report.
type TestCase struct {
	// Name uniquely identifies the case and names its working directory.
	Name string `yaml:"name"`

	// Description explains what the case validates.
	Description string `yaml:"description"`

	// Packages is the coordinate/version constraint string handed to the
	// downloader verbatim.
	Packages PackageRequest `yaml:"packages"`

	// Artifacts lists expected output files and their reference sources.
	Artifacts ArtifactSpec `yaml:"artifacts,omitempty"`

	// ExpectedReport is the ordered list of report sections the downloader
	// must emit, each pre-joined as "Label:\nentry1\nentry2...". A nil list
	// opts out of report verification entirely; an empty non-nil list
	// asserts that no recognized section is emitted.
	ExpectedReport []string `yaml:"expected_report"`

	// Iterations is how many times the downloader runs against the same
	// working directory. Values above 1 exercise re-run behavior.
	// Zero means the default of 1.
	Iterations int `yaml:"iterations,omitempty"`
}

// IterationCount returns the effective iteration count (minimum 1).
func (tc *TestCase) IterationCount() int {
	if tc.Iterations < 1 {
		return 1
	}
	return tc.Iterations
}

// IterationName returns the per-iteration invocation name: the base name,
// or the base name suffixed with the 1-based iteration number when the case
// runs more than once.
func (tc *TestCase) IterationName(iteration int) string {
	if tc.IterationCount() == 1 {
		return tc.Name
	}
	return fmt.Sprintf("%s-%d", tc.Name, iteration)
}

// Validate checks the structural invariants of a test case definition.
func (tc *TestCase) Validate() error {
	if tc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if tc.Packages == "" {
		return fmt.Errorf("packages is required")
	}
	if tc.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 1, got %d", tc.Iterations)
	}
	if err := tc.Artifacts.Validate(); err != nil {
		return err
	}
	return nil
}
