package executor

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/adapters/fs"    //nolint:depguard // Wired in engine wiring
	"github.com/kilnbuild/kiln/internal/adapters/shell" //nolint:depguard // Wired in engine wiring
	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/kilnbuild/kiln/internal/engine/cache"
)

// NodeID is the unique identifier for the build executor Graft node.
const NodeID graft.ID = "engine.executor"

func init() {
	graft.Register(graft.Node[*Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cache.NodeID,
			shell.NodeID,
			fs.HasherNodeID,
		},
		Run: func(ctx context.Context) (*Executor, error) {
			c, err := graft.Dep[*cache.Cache](ctx)
			if err != nil {
				return nil, err
			}
			runner, err := graft.Dep[ports.Runner](ctx)
			if err != nil {
				return nil, err
			}
			files, err := graft.Dep[ports.FileHasher](ctx)
			if err != nil {
				return nil, err
			}
			return New(c, runner, files, "."), nil
		},
	})
}
