// Package extract provides the default dependency extractors.
//
// The symbol extractor is deliberately language-agnostic: it reports which
// known names appear as whole words in a command's text. Anything smarter
// (real parsing of a target language) plugs in behind the same port.
package extract

import (
	"regexp"
	"sync"

	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SymbolExtractor = (*Symbols)(nil)

// Symbols extracts references by word-boundary matching against the known
// symbol table. Deterministic for a fixed command and table.
type Symbols struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewSymbols creates a new symbol extractor.
func NewSymbols() *Symbols {
	return &Symbols{patterns: make(map[string]*regexp.Regexp)}
}

// Extract returns the subset of symbols referenced by the command text,
// in the order the symbol table lists them.
func (s *Symbols) Extract(command string, symbols []string) ([]string, error) {
	var refs []string
	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		re, err := s.pattern(sym)
		if err != nil {
			return nil, err
		}
		if re.MatchString(command) {
			refs = append(refs, sym)
		}
	}
	return refs, nil
}

func (s *Symbols) pattern(sym string) (*regexp.Regexp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if re, ok := s.patterns[sym]; ok {
		return re, nil
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(sym) + `\b`)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to compile symbol pattern"), "symbol", sym)
	}
	s.patterns[sym] = re
	return re, nil
}
