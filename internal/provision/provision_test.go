package provision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "download.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho downloader\n"), 0755))
	return path
}

func TestEnsureDirectory_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, EnsureDirectory(dir))
	require.NoError(t, EnsureDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestProvisionTestRoot_CreatesWorkDirAndScript(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	p := &Provisioner{OutputRoot: root, ScriptSource: writeScript(t)}

	workDir, err := p.ProvisionTestRoot("single-artifact")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "single-artifact"), workDir)

	info, err := os.Stat(workDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Script lives directly under the shared root, not in the case dir.
	data, err := os.ReadFile(filepath.Join(root, "download.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo downloader")
}

func TestProvisionTestRoot_Deterministic(t *testing.T) {
	p := &Provisioner{OutputRoot: t.TempDir(), ScriptSource: writeScript(t)}

	first, err := p.ProvisionTestRoot("case-a")
	require.NoError(t, err)
	second, err := p.ProvisionTestRoot("case-a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProvisionTestRoot_ScriptCopiedOnce(t *testing.T) {
	scriptSrc := writeScript(t)
	p := &Provisioner{OutputRoot: t.TempDir(), ScriptSource: scriptSrc}

	_, err := p.ProvisionTestRoot("case-a")
	require.NoError(t, err)

	// Changing the source after the first copy must not repin the script.
	require.NoError(t, os.WriteFile(scriptSrc, []byte("#!/bin/sh\necho changed\n"), 0755))

	_, err = p.ProvisionTestRoot("case-b")
	require.NoError(t, err)

	data, err := os.ReadFile(p.ScriptPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "echo downloader")
}

func TestProvisionTestRoot_MissingScriptFails(t *testing.T) {
	p := &Provisioner{
		OutputRoot:   t.TempDir(),
		ScriptSource: filepath.Join(t.TempDir(), "missing.sh"),
	}

	_, err := p.ProvisionTestRoot("case-a")
	assert.ErrorIs(t, err, ErrProvisioning)
}

func TestProvisionTestRoot_EmptyNameFails(t *testing.T) {
	p := &Provisioner{OutputRoot: t.TempDir(), ScriptSource: writeScript(t)}

	_, err := p.ProvisionTestRoot("")
	assert.ErrorIs(t, err, ErrProvisioning)
}

func TestProvisionTestRoot_ReusesDirtyDirectory(t *testing.T) {
	root := t.TempDir()
	p := &Provisioner{OutputRoot: root, ScriptSource: writeScript(t)}

	workDir, err := p.ProvisionTestRoot("case-a")
	require.NoError(t, err)

	stale := filepath.Join(workDir, "stale.jar")
	require.NoError(t, os.WriteFile(stale, []byte("leftover"), 0644))

	// Re-provisioning does not clean; stale files survive for forensics.
	again, err := p.ProvisionTestRoot("case-a")
	require.NoError(t, err)
	assert.Equal(t, workDir, again)
	_, err = os.Stat(stale)
	assert.NoError(t, err)
}
