package backend

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/adapters/config" //nolint:depguard // Wired in adapter graph
	"github.com/kilnbuild/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the cache backend Graft node.
const NodeID graft.ID = "adapter.cache_backend"

// locationEnv overrides any configured cache directory.
const locationEnv = "KILN_CACHE_DIR"

func init() {
	graft.Register(graft.Node[ports.Backend]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
		},
		Run: func(ctx context.Context) (ports.Backend, error) {
			loader, err := graft.Dep[ports.PlanLoader](ctx)
			if err != nil {
				return nil, err
			}
			return NewFilesystem(resolveLocation(loader))
		},
	})
}

// resolveLocation picks the cache directory: the environment override wins,
// then the plan's settings.cache, then the default. A missing or unreadable
// plan falls through to the default; the loader reports that error itself
// once the plan is actually needed.
func resolveLocation(loader ports.PlanLoader) string {
	if location := os.Getenv(locationEnv); location != "" {
		return location
	}
	if plan, err := loader.Load("."); err == nil && plan.Settings.CacheDir != "" {
		return plan.Settings.CacheDir
	}
	return DefaultLocation
}
