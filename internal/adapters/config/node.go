package config

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the plan loader Graft node.
const NodeID graft.ID = "adapter.plan_loader"

func init() {
	graft.Register(graft.Node[ports.PlanLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.PlanLoader, error) {
			return &FilePlanLoader{Filename: DefaultFilename}, nil
		},
	})
}
