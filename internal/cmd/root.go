package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for artcheck
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artcheck",
		Short: "Acceptance test harness for artifact download tools",
		Long: `Artcheck runs declarative acceptance suites against an artifact
download tool.

For each test case it provisions an isolated working directory, invokes
the tool as a subprocess, and verifies the downloaded artifacts against
reference copies: files must exist, their contents must match byte for
byte, and the tool's report output must list the expected sections.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}
