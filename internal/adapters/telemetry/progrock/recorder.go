// Package progrock provides the Progrock implementation of the tracer port.
package progrock

import (
	"context"

	"github.com/kilnbuild/kiln/internal/core/ports"
	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
)

var _ ports.Tracer = (*Recorder)(nil)

// Recorder implements ports.Tracer on a progrock recording session.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins recording a vertex for one node build.
func (r *Recorder) Start(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	v := r.rec.Vertex(digest.FromString(name), name)
	return ctx, &Span{vertex: v}
}

// EmitPlan displays the set of nodes planned for this run.
func (r *Recorder) EmitPlan(_ context.Context, names []string) {
	for _, name := range names {
		r.rec.Debug("planned", progrock.Labelf("node", "%s", name))
	}
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
