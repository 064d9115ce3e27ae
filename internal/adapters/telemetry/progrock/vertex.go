package progrock

import (
	"github.com/vito/progrock"
)

// Span wraps a *progrock.VertexRecorder as a ports.Span.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write forwards output to the vertex's stdout stream.
func (s *Span) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}

// End completes the vertex with any recorded error.
func (s *Span) End() {
	s.vertex.Done(s.err)
}

// RecordError records an error to be reported when the span ends.
func (s *Span) RecordError(err error) {
	s.err = err
}

// Cached marks the vertex as a cache hit.
func (s *Span) Cached() {
	s.vertex.Cached()
}

// SetAttribute is not displayed by the tape; attributes are dropped.
func (s *Span) SetAttribute(_ string, _ any) {}
