// Package fs provides file hashing and verification adapters.
package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileHasher = (*Hasher)(nil)

// Hasher computes long-hash fingerprints of files on disk.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashFile returns the sha256 hex digest of the file's content.
func (h *Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path is controlled by the caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// HashFileSet returns one combined digest over the given paths resolved
// against root. Paths are processed in sorted order so the result does not
// depend on declaration order.
func (h *Hasher) HashFileSet(root string, paths []string) (string, error) {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)

	digest := sha256.New()
	for _, p := range sorted {
		full := filepath.Join(root, p)
		fileHash, err := h.HashFile(full)
		if err != nil {
			return "", err
		}
		// Bind each content hash to its declared path.
		_, _ = digest.Write([]byte(p))
		_, _ = digest.Write([]byte{0})
		_, _ = digest.Write([]byte(fileHash))
		_, _ = digest.Write([]byte{0})
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// MissingFiles returns the subset of paths absent under root.
func (h *Hasher) MissingFiles(root string, paths []string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		full := filepath.Join(root, p)
		if _, err := os.Stat(full); err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				missing = append(missing, p)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", full)
		}
	}
	return missing, nil
}
