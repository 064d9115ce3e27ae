package ports

// FileHasher computes long-hash fingerprints of files on disk.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type FileHasher interface {
	// HashFile returns the long hash of a single file's content.
	HashFile(path string) (string, error)

	// HashFileSet returns one combined long hash over the given paths,
	// resolved against root and processed in sorted order.
	HashFileSet(root string, paths []string) (string, error)

	// MissingFiles returns the subset of paths that do not exist under root.
	MissingFiles(root string, paths []string) ([]string, error)
}
