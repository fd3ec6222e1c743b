package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/artcheck/internal/history"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'artcheck history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <suite-name>",
		Short: "Show recorded runs for a suite",
		Long: `Display recorded case outcomes for a suite, newest first.

History is only available when runs were executed with recording
enabled (the --history flag or history.enabled in the config file).`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .artcheck/config.yaml)")
	cmd.Flags().String("case", "", "Limit output to a single case name")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")

	return cmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, args []string) error {
	suiteName := args[0]
	output := cmd.OutOrStdout()

	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}

	dbPath := cfg.HistoryDBPath()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No run history found for suite: %s\n", suiteName)
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	caseName, _ := cmd.Flags().GetString("case")
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := store.RecentRuns(suiteName, caseName, limit)
	if err != nil {
		return fmt.Errorf("query run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(output, "No run history found for suite: %s\n", suiteName)
		return nil
	}

	printRuns(cmd, runs)
	return nil
}

func printRuns(cmd *cobra.Command, runs []history.CaseRun) {
	output := cmd.OutOrStdout()

	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(output, "Showing %d run(s):\n\n", len(runs))
	for _, run := range runs {
		status := pass("PASS")
		if !run.Passed {
			status = fail("FAIL")
		}
		fmt.Fprintf(output, "%s  %s  %s (%d iteration(s), %s)\n",
			run.RecordedAt.Format("2006-01-02 15:04:05"), status, run.CaseName,
			run.Iterations, run.Duration.Round(time.Millisecond))
		if run.FailureDetail != "" {
			fmt.Fprintf(output, "        %s\n", run.FailureDetail)
		}
	}
}
