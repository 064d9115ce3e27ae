package extract

import (
	"os"
	"regexp"

	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DocExtractor = (*DocScanner)(nil)

// docCallPattern matches embedded read/load calls in literate documents,
// e.g. `load("model")` or `read('raw')`.
var docCallPattern = regexp.MustCompile(`\b(?:read|load)\(\s*["']([^"']+)["']\s*\)`)

// DocScanner is the default literate-document extractor. It scans document
// source for read/load calls and reports the referenced names.
type DocScanner struct {
	extensions []string
}

// NewDocScanner creates a scanner for the default literate extensions.
func NewDocScanner() *DocScanner {
	return &DocScanner{extensions: []string{".md", ".rmd", ".qmd"}}
}

// Extensions returns the handled file extensions.
func (d *DocScanner) Extensions() []string {
	return d.extensions
}

// ExtractFile returns the names referenced by read/load calls in the file.
func (d *DocScanner) ExtractFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // declared input path
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read document"), "path", path)
	}

	var names []string
	for _, match := range docCallPattern.FindAllSubmatch(data, -1) {
		names = append(names, string(match[1]))
	}
	return names, nil
}
