// Package backend implements cache key/value backends.
package backend

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Backend = (*Filesystem)(nil)

// DefaultLocation is the cache directory used when none is configured.
const DefaultLocation = ".kiln"

// Filesystem is a ports.Backend storing each key as a file under a root
// directory. Writes go through a temp file and rename, so a value is either
// fully present or absent; readers never observe a partial write.
type Filesystem struct {
	root string
}

// NewFilesystem creates a filesystem backend rooted at the given directory.
func NewFilesystem(root string) (*Filesystem, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create cache directory"), "location", root)
	}
	return &Filesystem{root: root}, nil
}

// Get returns the value for key, or domain.ErrKeyNotFound.
func (f *Filesystem) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.keyPath(key)) //nolint:gosec // key layout is cache-internal
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrKeyNotFound, "key", key)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read key"), "key", key)
	}
	return data, nil
}

// Set stores the value for key atomically.
func (f *Filesystem) Set(key string, data []byte) error {
	path := f.keyPath(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create key directory"), "key", key)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp file"), "key", key)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to write temp file"), "key", key)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to close temp file"), "key", key)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to commit key"), "key", key)
	}
	return nil
}

// Exists reports whether key is present.
func (f *Filesystem) Exists(key string) (bool, error) {
	_, err := os.Stat(f.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat key"), "key", key)
	}
	return true, nil
}

// List returns all stored keys in slash form.
func (f *Filesystem) List() ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(f.root, path)
		if relErr != nil {
			return relErr
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list keys"), "location", f.root)
	}
	return keys, nil
}

// Delete removes key. Absent keys are not an error.
func (f *Filesystem) Delete(key string) error {
	if err := os.Remove(f.keyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(err, "failed to delete key"), "key", key)
	}
	return nil
}

// ShortHashName identifies the key-addressing hash bound to this layout.
func (f *Filesystem) ShortHashName() string { return "xxhash64" }

// LongHashName identifies the content fingerprint hash.
func (f *Filesystem) LongHashName() string { return "sha256" }

// Location returns the backing directory.
func (f *Filesystem) Location() string { return f.root }

func (f *Filesystem) keyPath(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}
