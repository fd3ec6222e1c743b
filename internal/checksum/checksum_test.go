package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestDigest_MissingFile(t *testing.T) {
	_, err := Digest(filepath.Join(t.TempDir(), "nope.jar"))
	assert.Error(t, err)
}

func TestDigest_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.jar", []byte("artifact bytes"))

	d1, err := Digest(path)
	require.NoError(t, err)
	d2, err := Digest(path)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64) // hex-encoded SHA-256
}

func TestContentsMatch_Reflexive(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.jar", []byte{0x00, 0x01, 0x02, 0xff})

	match, err := ContentsMatch(path, path)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestContentsMatch_IdenticalCopies(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jar", []byte("same content"))
	b := writeFile(t, dir, "b.jar", []byte("same content"))

	match, err := ContentsMatch(a, b)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestContentsMatch_SingleByteDifference(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jar", []byte("content A"))
	b := writeFile(t, dir, "b.jar", []byte("content B"))

	match, err := ContentsMatch(a, b)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestContentsMatch_EmptyFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jar", nil)
	b := writeFile(t, dir, "b.jar", nil)

	match, err := ContentsMatch(a, b)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestContentsMatch_MissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jar", []byte("x"))

	_, err := ContentsMatch(a, filepath.Join(dir, "missing.jar"))
	assert.Error(t, err)
}
