// Package config loads and validates artcheck harness configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HistoryConfig configures the run-history database.
type HistoryConfig struct {
	// Enabled turns on run-history recording
	Enabled bool `yaml:"enabled"`

	// DBPath is the history database path; relative paths are resolved
	// under the output root so forensics stay next to the working dirs
	DBPath string `yaml:"db_path"`
}

// Config represents harness configuration options
type Config struct {
	// ToolPath is the downloader invocation script to pin and test
	ToolPath string `yaml:"tool_path"`

	// OutputRoot is the shared root for per-case working directories
	OutputRoot string `yaml:"output_root"`

	// RepoRoot is the fixed repository root reference files resolve against
	RepoRoot string `yaml:"repo_root"`

	// Repos is the ordered list of artifact-repository root URIs handed to
	// the downloader
	Repos []string `yaml:"repos"`

	// SDKRoot is the fake platform-SDK root handed to the downloader
	SDKRoot string `yaml:"sdk_root"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// History contains run-history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		OutputRoot: ".artcheck/out",
		LogLevel:   "info",
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "history.db",
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from the file, merging with defaults
	if fileCfg.ToolPath != "" {
		cfg.ToolPath = fileCfg.ToolPath
	}
	if fileCfg.OutputRoot != "" {
		cfg.OutputRoot = fileCfg.OutputRoot
	}
	if fileCfg.RepoRoot != "" {
		cfg.RepoRoot = fileCfg.RepoRoot
	}
	if len(fileCfg.Repos) > 0 {
		cfg.Repos = fileCfg.Repos
	}
	if fileCfg.SDKRoot != "" {
		cfg.SDKRoot = fileCfg.SDKRoot
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.History.Enabled {
		cfg.History.Enabled = true
	}
	if fileCfg.History.DBPath != "" {
		cfg.History.DBPath = fileCfg.History.DBPath
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(toolPath, outputRoot, repoRoot, sdkRoot, logLevel *string, historyEnabled *bool) {
	if toolPath != nil {
		c.ToolPath = *toolPath
	}
	if outputRoot != nil {
		c.OutputRoot = *outputRoot
	}
	if repoRoot != nil {
		c.RepoRoot = *repoRoot
	}
	if sdkRoot != nil {
		c.SDKRoot = *sdkRoot
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if historyEnabled != nil {
		c.History.Enabled = *historyEnabled
	}
}

// HistoryDBPath resolves the history database path: relative paths land
// under the output root.
func (c *Config) HistoryDBPath() string {
	if filepath.IsAbs(c.History.DBPath) {
		return c.History.DBPath
	}
	return filepath.Join(c.OutputRoot, c.History.DBPath)
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.ToolPath == "" {
		return fmt.Errorf("tool_path is required")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("output_root is required")
	}
	if c.RepoRoot == "" {
		return fmt.Errorf("repo_root is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}

	return nil
}
