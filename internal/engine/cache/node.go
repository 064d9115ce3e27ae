package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/adapters/backend" //nolint:depguard // Wired in engine wiring
	"github.com/kilnbuild/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the fingerprint cache Graft node.
const NodeID graft.ID = "engine.cache"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{backend.NodeID},
		Run: func(ctx context.Context) (*Cache, error) {
			be, err := graft.Dep[ports.Backend](ctx)
			if err != nil {
				return nil, err
			}
			return New(be), nil
		},
	})
}
