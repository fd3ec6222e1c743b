// Package suite loads declarative test suite definitions and runs them as
// a batch. Suites are static: every case is parsed and validated before any
// execution starts.
package suite

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/artcheck/internal/models"
)

// Suite is an ordered collection of test cases for one downloader.
type Suite struct {
	// Name identifies the suite in logs and history.
	Name string `yaml:"name"`

	// Description explains what the suite covers.
	Description string `yaml:"description,omitempty"`

	// Cases are executed sequentially in declaration order.
	Cases []models.TestCase `yaml:"cases"`
}

// Load reads a suite definition from path, dispatching on the file
// extension: .md/.markdown parse as Markdown, everything else as YAML.
func Load(path string) (*Suite, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return loadMarkdown(path)
	default:
		return loadYAML(path)
	}
}

// loadYAML parses a YAML suite file with strict field validation so typos
// in case definitions fail loudly instead of silently dropping fields.
func loadYAML(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return &s, nil
}

// Validate checks suite-level invariants and every case definition.
func (s *Suite) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		tc := &s.Cases[i]
		if err := tc.Validate(); err != nil {
			return fmt.Errorf("cases[%d]: %w", i, err)
		}
		if seen[tc.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, tc.Name)
		}
		seen[tc.Name] = true
	}
	return nil
}
