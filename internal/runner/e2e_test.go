package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/artcheck/internal/models"
	"github.com/harrison/artcheck/internal/provision"
	"github.com/harrison/artcheck/internal/report"
	"github.com/harrison/artcheck/internal/verify"
)

// stubPrologue parses the harness's argument contract so stub scripts can
// honor --target-dir like the real downloader would.
const stubPrologue = `#!/bin/sh
target=""
while [ $# -gt 0 ]; do
  case "$1" in
    --target-dir) target="$2"; shift 2 ;;
    --sdk-root|--packages|--repo) shift 2 ;;
    *) shift ;;
  esac
done
`

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub downloader scripts require a POSIX shell")
	}
}

// newE2ERunner pins the given script body and returns a runner executing it
// for real via ExecRunner.
func newE2ERunner(t *testing.T, scriptBody, repoRoot string) *TestCaseRunner {
	t.Helper()
	script := filepath.Join(t.TempDir(), "download.sh")
	require.NoError(t, os.WriteFile(script, []byte(stubPrologue+scriptBody), 0755))
	prov := &provision.Provisioner{OutputRoot: t.TempDir(), ScriptSource: script}
	return New(prov, ExecRunner{}, report.NewParser(models.KnownLabels()), repoRoot, "/fake/sdk", []string{"file://" + repoRoot})
}

func writeRepoArtifact(t *testing.T, repoRoot, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, name), []byte(content), 0644))
}

// Scenario A: a request for an artifact with one dependency yields two
// output files and a single Copied section in resolution order.
func TestE2E_CopiedArtifacts(t *testing.T) {
	requireUnix(t)
	repoRoot := t.TempDir()
	writeRepoArtifact(t, repoRoot, "common-1.0.0.jar", "common bytes")
	writeRepoArtifact(t, repoRoot, "runtime-1.0.0.jar", "runtime bytes")

	script := fmt.Sprintf(`cp %q "$target/"
cp %q "$target/"
echo "Copied artifacts:"
echo "android.arch.core:common:1.0.0"
echo "android.arch.core:runtime:1.0.0"
echo ""
`, filepath.Join(repoRoot, "common-1.0.0.jar"), filepath.Join(repoRoot, "runtime-1.0.0.jar"))
	r := newE2ERunner(t, script, repoRoot)

	tc := &models.TestCase{
		Name:        "copied-artifacts",
		Description: "an available artifact and its dependency are copied",
		Packages:    "android.arch.core:common:1.0.0",
		Artifacts: models.ArtifactSpec{
			{Output: "common-1.0.0.jar", Reference: "common-1.0.0.jar"},
			{Output: "runtime-1.0.0.jar", Reference: "runtime-1.0.0.jar"},
		},
		ExpectedReport: []string{
			report.JoinSection(models.LabelCopied,
				"android.arch.core:common:1.0.0",
				"android.arch.core:runtime:1.0.0"),
		},
	}

	results, err := r.Run(context.Background(), tc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
}

// Scenario B: a nonexistent coordinate yields no files and exactly one
// Missing section naming the requested coordinate.
func TestE2E_MissingArtifact(t *testing.T) {
	requireUnix(t)
	script := `echo "Missing artifacts:"
echo "apackage.thatdoes.notexist:9.9.9"
echo ""
`
	r := newE2ERunner(t, script, t.TempDir())

	tc := &models.TestCase{
		Name:     "missing-artifact",
		Packages: "apackage.thatdoes.notexist:9.9.9",
		ExpectedReport: []string{
			report.JoinSection(models.LabelMissing, "apackage.thatdoes.notexist:9.9.9"),
		},
	}

	results, err := r.Run(context.Background(), tc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
}

// Scenario C: a version conflict the downloader resolves produces a Copied
// section followed by a Modified section listing old --> new.
func TestE2E_ModifiedArtifacts(t *testing.T) {
	requireUnix(t)
	repoRoot := t.TempDir()
	writeRepoArtifact(t, repoRoot, "lib-2.0.0.jar", "v2 bytes")

	script := fmt.Sprintf(`cp %q "$target/"
echo "Copied artifacts:"
echo "com.example:lib:2.0.0"
echo ""
echo "Modified artifacts:"
echo "com.example:lib:1.0.0 --> com.example:lib:2.0.0"
echo ""
`, filepath.Join(repoRoot, "lib-2.0.0.jar"))
	r := newE2ERunner(t, script, repoRoot)

	tc := &models.TestCase{
		Name:     "version-conflict",
		Packages: "com.example:lib:1.0.0;com.example:lib:2.0.0",
		Artifacts: models.ArtifactSpec{
			{Output: "lib-2.0.0.jar", Reference: "lib-2.0.0.jar"},
		},
		ExpectedReport: []string{
			report.JoinSection(models.LabelCopied, "com.example:lib:2.0.0"),
			report.JoinSection(models.LabelModified, "com.example:lib:1.0.0 --> com.example:lib:2.0.0"),
		},
	}

	results, err := r.Run(context.Background(), tc)
	require.NoError(t, err)
	assert.True(t, results[0].Passed())
}

// Idempotence: a second iteration against an already-populated directory
// yields the same file set and the same Copied section.
func TestE2E_RepeatedRunIsIdempotent(t *testing.T) {
	requireUnix(t)
	repoRoot := t.TempDir()
	writeRepoArtifact(t, repoRoot, "common-1.0.0.jar", "common bytes")

	script := fmt.Sprintf(`cp -f %q "$target/"
echo "Copied artifacts:"
echo "android.arch.core:common:1.0.0"
echo ""
`, filepath.Join(repoRoot, "common-1.0.0.jar"))
	r := newE2ERunner(t, script, repoRoot)

	tc := &models.TestCase{
		Name:     "idempotent-rerun",
		Packages: "android.arch.core:common:1.0.0",
		Artifacts: models.ArtifactSpec{
			{Output: "common-1.0.0.jar", Reference: "common-1.0.0.jar"},
		},
		ExpectedReport: []string{
			report.JoinSection(models.LabelCopied, "android.arch.core:common:1.0.0"),
		},
		Iterations: 2,
	}

	results, err := r.Run(context.Background(), tc)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Passed())
	assert.True(t, results[1].Passed())
	assert.Equal(t, results[0].Outputs, results[1].Outputs)
}

// Stale unrelated files in a reused working directory must not satisfy
// existence checks for files the downloader never produced.
func TestE2E_StaleFilesDoNotMaskMissingOutputs(t *testing.T) {
	requireUnix(t)
	r := newE2ERunner(t, `echo "Missing artifacts:"
echo "a:b:1"
echo ""
`, t.TempDir())

	// Simulate leftovers from an earlier suite run.
	workDir, err := r.Provisioner.ProvisionTestRoot("stale-dir")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "unrelated-leftover.jar"), []byte("stale"), 0644))

	tc := &models.TestCase{
		Name:      "stale-dir",
		Packages:  "a:b:1",
		Artifacts: models.ArtifactSpec{{Output: "b-1.jar"}},
	}

	_, err = r.Run(context.Background(), tc)
	require.Error(t, err)

	var verr *verify.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, verify.CheckExistence, verr.Check)
	assert.Contains(t, verr.Details[0], "b-1.jar")
}
