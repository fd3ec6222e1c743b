// Package provision prepares the isolated filesystem layout each test case
// runs in: one shared output root holding a single pinned copy of the
// downloader's invocation script, and one working directory per test case
// underneath it. Directories are reused across harness runs and never
// cleaned automatically; leftover files are kept for failure forensics.
package provision

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/harrison/artcheck/internal/filelock"
)

// ErrProvisioning wraps any directory or script setup failure. Such a
// failure is fatal for the test case and aborts it before invocation.
var ErrProvisioning = errors.New("provisioning failed")

// Provisioner lays out working directories under a shared output root and
// pins one copy of the invocation script there.
type Provisioner struct {
	// OutputRoot is the shared root all test case directories live under.
	OutputRoot string

	// ScriptSource is the path of the invocation script to copy into the
	// output root before the first test case runs.
	ScriptSource string

	scriptOnce sync.Once
	scriptErr  error
}

// EnsureDirectory creates path and all missing ancestors. Calling it on an
// existing directory is a no-op.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %v", ErrProvisioning, path, err)
	}
	return nil
}

// ScriptPath returns where the pinned script copy lives under the output
// root.
func (p *Provisioner) ScriptPath() string {
	return filepath.Join(p.OutputRoot, filepath.Base(p.ScriptSource))
}

// ProvisionTestRoot returns the working directory for the named test case,
// creating it (and the output root) as needed. Before the first directory
// is created it copies the invocation script into the output root exactly
// once, so every test case executes against the identical pinned tool
// version. The script copy is shared by all test cases and is not part of
// any per-case directory.
func (p *Provisioner) ProvisionTestRoot(testCaseName string) (string, error) {
	if testCaseName == "" {
		return "", fmt.Errorf("%w: test case name is empty", ErrProvisioning)
	}

	p.scriptOnce.Do(func() {
		p.scriptErr = p.copyScript()
	})
	if p.scriptErr != nil {
		return "", p.scriptErr
	}

	workDir := filepath.Join(p.OutputRoot, testCaseName)
	if err := EnsureDirectory(workDir); err != nil {
		return "", err
	}
	return workDir, nil
}

// copyScript copies the invocation script into the output root. A file lock
// serializes the copy across harness processes sharing the same root, and
// the write itself is atomic so a concurrent reader never sees a partial
// script.
func (p *Provisioner) copyScript() error {
	if p.ScriptSource == "" {
		return fmt.Errorf("%w: no invocation script configured", ErrProvisioning)
	}
	if err := EnsureDirectory(p.OutputRoot); err != nil {
		return err
	}

	lock := filelock.NewFileLock(p.ScriptPath() + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(p.ScriptSource)
	if err != nil {
		return fmt.Errorf("%w: failed to read invocation script %s: %v", ErrProvisioning, p.ScriptSource, err)
	}
	if err := filelock.AtomicWrite(p.ScriptPath(), data, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	return nil
}
