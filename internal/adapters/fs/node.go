package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/kilnbuild/kiln/internal/core/ports"
)

// HasherNodeID is the unique identifier for the file hasher Graft node.
const HasherNodeID graft.ID = "adapter.file_hasher"

func init() {
	graft.Register(graft.Node[ports.FileHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.FileHasher, error) {
			return NewHasher(), nil
		},
	})
}
