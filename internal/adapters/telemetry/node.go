package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/adapters/telemetry/progrock"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/mattn/go-isatty"
)

// TracerNodeID is the unique identifier for the tracer Graft node.
const TracerNodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Tracer, error) {
			// The tape renders in-place terminal progress; anything that
			// is not a terminal gets the quiet tracer.
			if isatty.IsTerminal(os.Stderr.Fd()) {
				return progrock.New(), nil
			}
			return NewNoOpTracer(), nil
		},
	})
}
