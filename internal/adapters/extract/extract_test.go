package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilnbuild/kiln/internal/adapters/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbols_Extract(t *testing.T) {
	s := extract.NewSymbols()
	symbols := []string{"raw", "clean", "model"}

	tests := []struct {
		name    string
		command string
		want    []string
	}{
		{"single reference", "scrub raw", []string{"raw"}},
		{"multiple references", "fit clean raw", []string{"raw", "clean"}},
		{"no references", "echo hello", nil},
		{"substring is not a reference", "cat rawest.csv cleanup.sh", nil},
		{"punctuation boundaries", "plot(model, raw)", []string{"raw", "model"}},
		{"repeated mention reported once", "join raw raw", []string{"raw"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Extract(tt.command, symbols)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSymbols_Extract_MetaCharacters(t *testing.T) {
	s := extract.NewSymbols()

	// Symbol names with regexp metacharacters must match literally.
	got, err := s.Extract("run build.step now", []string{"build.step"})
	require.NoError(t, err)
	assert.Equal(t, []string{"build.step"}, got)

	got, err = s.Extract("run buildxstep now", []string{"build.step"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocScanner_Extensions(t *testing.T) {
	d := extract.NewDocScanner()
	assert.Equal(t, []string{".md", ".rmd", ".qmd"}, d.Extensions())
}

func TestDocScanner_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	doc := `# Analysis

First we load the cleaned data:

    df = load("clean")
    raw = read('raw')

A call split over whitespace also counts: load( "model" ).
Prose mentioning load or read without a call does not.
`
	path := filepath.Join(dir, "analysis.md")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	names, err := extract.NewDocScanner().ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"clean", "raw", "model"}, names)
}

func TestDocScanner_ExtractFile_Missing(t *testing.T) {
	_, err := extract.NewDocScanner().ExtractFile(filepath.Join(t.TempDir(), "ghost.md"))
	assert.Error(t, err)
}
