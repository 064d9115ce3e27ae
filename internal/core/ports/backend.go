// Package ports defines the core interfaces for the application.
package ports

// Backend is the key/value contract the fingerprint cache is built on.
// Implementations must make Set atomic per key: a reader never observes a
// partially written value.
//
//go:generate go run go.uber.org/mock/mockgen -source=backend.go -destination=mocks/mock_backend.go -package=mocks
type Backend interface {
	// Get returns the value for key, or domain.ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set stores the value for key, replacing any previous value.
	Set(key string, data []byte) error

	// Exists reports whether key is present.
	Exists(key string) (bool, error)

	// List returns all stored keys.
	List() ([]string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// ShortHashName and LongHashName identify the hash algorithms bound to
	// this backend's layout. The short algorithm addresses storage keys and
	// is immutable for the life of the on-disk layout; changing the long
	// algorithm invalidates every recorded fingerprint.
	ShortHashName() string
	LongHashName() string

	// Location identifies this cache (filesystem path or equivalent) so
	// independent caches can coexist.
	Location() string
}
