package ports

// SymbolExtractor discovers which known symbol names a command references.
// Implementations must be deterministic for a fixed command text and symbol
// table; the core graph logic stays language-agnostic behind this interface.
//
//go:generate go run go.uber.org/mock/mockgen -source=extractor.go -destination=mocks/mock_extractor.go -package=mocks
type SymbolExtractor interface {
	// Extract returns the subset of symbols referenced by the command text.
	Extract(command string, symbols []string) ([]string, error)
}

// DocExtractor scans literate-document source for embedded read/load calls.
// Extractors are registered by file extension, not hardwired into the core.
type DocExtractor interface {
	// Extensions returns the file extensions this extractor handles,
	// lowercase with leading dot.
	Extensions() []string

	// ExtractFile returns the symbol names referenced by the document.
	ExtractFile(path string) ([]string, error)
}
