// Package checksum compares files for byte-identical content via SHA-256
// digests. Digests are never persisted; they only support same-run
// comparison and failure diagnostics.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest computes the hex-encoded SHA-256 digest of the file's full byte
// content. Returns an error if the file cannot be opened or read.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentsMatch reports whether two files have identical byte content.
// Both files must exist; existence checks are the caller's responsibility.
func ContentsMatch(a, b string) (bool, error) {
	da, err := Digest(a)
	if err != nil {
		return false, err
	}
	db, err := Digest(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}
