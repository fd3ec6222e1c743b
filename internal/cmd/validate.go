package cmd

import (
	"fmt"
	"io"

	"github.com/harrison/artcheck/internal/suite"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates and returns the validate subcommand
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite-file>...",
		Short: "Validate one or more suite files",
		Long: `Parse and validate suite files without running anything, checking for:
  - Suite structure (name, at least one case)
  - Case validation (names, packages, artifact lists)
  - Duplicate case names
  - Duplicate or non-relative artifact output paths

Supports YAML suites and Markdown suites with embedded YAML case blocks.

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateSuiteFiles(args, cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateSuiteFiles validates each suite file and reports per-file results.
// All files are checked even when an early one fails.
func validateSuiteFiles(paths []string, output io.Writer) error {
	var errorCount int

	for _, path := range paths {
		// Load validates the suite as part of parsing.
		s, err := suite.Load(path)
		if err != nil {
			fmt.Fprintf(output, "✗ Failed to parse suite from %s\n", path)
			fmt.Fprintf(output, "  Error: %v\n", err)
			errorCount++
			continue
		}

		fmt.Fprintf(output, "✓ %s: suite %q with %d case(s)\n", path, s.Name, len(s.Cases))
		for _, tc := range s.Cases {
			fmt.Fprintf(output, "  ✓ %s (%d artifact(s), %d iteration(s))\n", tc.Name, len(tc.Artifacts), tc.IterationCount())
		}
	}

	if errorCount == 0 {
		fmt.Fprintf(output, "\n✓ All suite files are valid!\n")
		return nil
	}

	fmt.Fprintf(output, "\nFound %d invalid suite file(s)!\n", errorCount)
	return fmt.Errorf("validation failed for %d of %d file(s)", errorCount, len(paths))
}
