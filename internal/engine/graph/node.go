package graph

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/adapters/extract" //nolint:depguard // Wired in engine wiring
	"github.com/kilnbuild/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the graph builder Graft node.
const NodeID graft.ID = "engine.graph_builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			extract.SymbolsNodeID,
			extract.DocsNodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			extractor, err := graft.Dep[ports.SymbolExtractor](ctx)
			if err != nil {
				return nil, err
			}
			docs, err := graft.Dep[[]ports.DocExtractor](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(extractor, docs, "."), nil
		},
	})
}
