package backend

import (
	"maps"
	"slices"
	"sync"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Backend = (*Memory)(nil)

// Memory is a non-durable ports.Backend. It is single-process by nature and
// is the store to pair with jobs=1 setups and tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns the value for key, or domain.ErrKeyNotFound.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[key]
	if !ok {
		return nil, zerr.With(domain.ErrKeyNotFound, "key", key)
	}
	return slices.Clone(data), nil
}

// Set stores the value for key.
func (m *Memory) Set(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(data)
	return nil
}

// Exists reports whether key is present.
func (m *Memory) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

// List returns all stored keys.
func (m *Memory) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data)), nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// ShortHashName identifies the key-addressing hash.
func (m *Memory) ShortHashName() string { return "xxhash64" }

// LongHashName identifies the content fingerprint hash.
func (m *Memory) LongHashName() string { return "sha256" }

// Location identifies this cache instance.
func (m *Memory) Location() string { return ":memory:" }
