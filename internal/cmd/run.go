package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/harrison/artcheck/internal/config"
	"github.com/harrison/artcheck/internal/history"
	"github.com/harrison/artcheck/internal/logger"
	"github.com/harrison/artcheck/internal/models"
	"github.com/harrison/artcheck/internal/provision"
	"github.com/harrison/artcheck/internal/report"
	"github.com/harrison/artcheck/internal/runner"
	"github.com/harrison/artcheck/internal/suite"
	"github.com/spf13/cobra"
)

// defaultConfigPath is where configuration is looked up when --config is
// not given. A missing file falls back to defaults.
const defaultConfigPath = ".artcheck/config.yaml"

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <suite-file>...",
		Short: "Run one or more acceptance suites",
		Long: `Run acceptance suites against the configured download tool.

Each suite file (YAML or Markdown format) declares test cases; for every
case the harness provisions a working directory under the output root,
invokes the tool once per iteration, and verifies artifact existence,
artifact content, and the tool's report sections.

Configuration is loaded from .artcheck/config.yaml if present.
CLI flags override configuration file settings.

Examples:
  # Single suite
  artcheck run suites/basic.yaml

  # Markdown suite
  artcheck run suites/downloads.md

  # Several suites in one batch
  artcheck run suites/basic.yaml suites/offline.yaml

  # Other options
  artcheck run --tool ./download-artifacts.sh suite.yaml
  artcheck run --timeout 30m suite.yaml        # Bound the whole batch
  artcheck run --log-level debug suite.yaml    # Show per-iteration detail
  artcheck run --history suite.yaml            # Record outcomes to the DB
  artcheck run --config custom.yaml suite.yaml # Use custom config file`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}

	// Add flags
	cmd.Flags().String("config", "", "Path to config file (default: .artcheck/config.yaml)")
	cmd.Flags().String("tool", "", "Path to the download tool invocation script")
	cmd.Flags().String("output-root", "", "Root directory for per-case working directories")
	cmd.Flags().String("repo-root", "", "Repository root reference files are resolved against")
	cmd.Flags().String("sdk-root", "", "Fake platform-SDK root handed to the tool")
	cmd.Flags().StringArray("repo", nil, "Artifact repository root URI (repeatable, overrides config)")
	cmd.Flags().String("log-level", "", "Logging verbosity: debug, info, warn, error")
	cmd.Flags().String("timeout", "", "Maximum batch execution time (e.g., 30m, 2h)")
	cmd.Flags().Bool("history", false, "Record case outcomes to the history database")
	cmd.Flags().Bool("no-history", false, "Do not record outcomes (overrides config)")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadMergedConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	timeoutStr, _ := cmd.Flags().GetString("timeout")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", timeoutStr, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Load all suites up front so a malformed file fails the batch before
	// any tool invocation.
	suites := make([]*suite.Suite, 0, len(args))
	for _, path := range args {
		s, err := suite.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load suite %s: %w", path, err)
		}
		suites = append(suites, s)
	}

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	prov := &provision.Provisioner{
		OutputRoot:   cfg.OutputRoot,
		ScriptSource: cfg.ToolPath,
	}

	var recorder suite.Recorder
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.HistoryDBPath())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	batch := &suite.Runner{
		Cases:    runner.New(prov, runner.ExecRunner{}, report.NewParser(models.KnownLabels()), cfg.RepoRoot, cfg.SDKRoot, cfg.Repos),
		Logger:   log,
		Recorder: recorder,
	}

	var failed int
	for _, s := range suites {
		fmt.Fprintf(cmd.OutOrStdout(), "Running suite %s (%d cases)...\n", s.Name, len(s.Cases))
		if _, err := batch.RunSuite(ctx, s); err != nil {
			if !errors.Is(err, suite.ErrSuiteFailed) {
				return err
			}
			log.LogError(err.Error())
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d suites failed", failed, len(suites))
	}
	return nil
}

// loadMergedConfig loads configuration from the flag-selected path (or the
// default) and merges CLI flag overrides into it.
func loadMergedConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	path := configPath
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if cmd.Flags().Changed("history") && cmd.Flags().Changed("no-history") {
		return nil, fmt.Errorf("cannot use both --history and --no-history")
	}

	// Build flag pointers for merge (only values the user set)
	strPtr := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}

	var historyPtr *bool
	if cmd.Flags().Changed("history") {
		v, _ := cmd.Flags().GetBool("history")
		historyPtr = &v
	} else if cmd.Flags().Changed("no-history") {
		v, _ := cmd.Flags().GetBool("no-history")
		disabled := !v
		historyPtr = &disabled
	}

	cfg.MergeWithFlags(strPtr("tool"), strPtr("output-root"), strPtr("repo-root"), strPtr("sdk-root"), strPtr("log-level"), historyPtr)

	if cmd.Flags().Changed("repo") {
		repos, _ := cmd.Flags().GetStringArray("repo")
		cfg.Repos = repos
	}

	// Resolve the tool path now so provisioning sees a stable source even
	// if the harness later changes directory.
	if cfg.ToolPath != "" {
		if abs, err := filepath.Abs(cfg.ToolPath); err == nil {
			cfg.ToolPath = abs
		}
	}

	return cfg, nil
}
