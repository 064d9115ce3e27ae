package extract

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/core/ports"
)

const (
	// SymbolsNodeID is the unique identifier for the symbol extractor node.
	SymbolsNodeID graft.ID = "adapter.symbol_extractor"
	// DocsNodeID is the unique identifier for the document extractor node.
	DocsNodeID graft.ID = "adapter.doc_extractors"
)

func init() {
	graft.Register(graft.Node[ports.SymbolExtractor]{
		ID:        SymbolsNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.SymbolExtractor, error) {
			return NewSymbols(), nil
		},
	})

	graft.Register(graft.Node[[]ports.DocExtractor]{
		ID:        DocsNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) ([]ports.DocExtractor, error) {
			return []ports.DocExtractor{NewDocScanner()}, nil
		},
	})
}
